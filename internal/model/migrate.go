package model

import "gorm.io/gorm"

// AutoMigrate creates or updates every table in dependency order.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Student{},
		&Instructor{},
		&LessonPlan{},
		&PlanFeature{},
		&Cart{},
		&CartItem{},
		&Purchase{},
		&CreditTransaction{},
		&Appointment{},
		&Review{},
		&JobApplication{},
		&ContactMessage{},
		&GiftCard{},
		&Referral{},
		&NotificationLog{},
	)
}
