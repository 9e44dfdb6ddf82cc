// Package chatbot answers the site's help widget with canned replies.
package chatbot

import "strings"

const DefaultReply = "I'm here to help! Ask me about pricing, booking, or contact information."

var replies = map[string]string{
	"hello":   "Hi! How can I help you with your driving lessons today?",
	"pricing": "Our lesson plans start from $299. Visit our pricing page for details!",
	"book":    "You can book a lesson from your student dashboard.",
	"contact": "You can reach us at (555) 123-4567 or email info@successdriving.com",
}

// Reply matches the whole lower-cased message against the known keywords.
func Reply(message string) string {
	if r, ok := replies[strings.ToLower(message)]; ok {
		return r
	}
	return DefaultReply
}
