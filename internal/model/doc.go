// Package model holds the gorm tables.
//
// Deletion policy, enforced by foreign key constraints:
//
//	students, instructors     -> users            CASCADE
//	carts                     -> students         CASCADE
//	cart_items                -> carts, plans     CASCADE
//	plan_features             -> lesson_plans     CASCADE
//	student_plan_purchases    -> students         CASCADE
//	student_plan_purchases    -> lesson_plans     RESTRICT
//	appointments              -> students         CASCADE
//	appointments              -> instructors      CASCADE
//	appointments              -> lesson_plans     SET NULL
//	credit_transactions       -> students         CASCADE
//	gift_cards.used_by        -> users            SET NULL
//	referrals                 -> users            CASCADE
//
// The catalog service repeats the lesson plan rules inside its delete
// transaction so the outcome does not depend on the driver enforcing them.
package model
