package email

import (
	"fmt"
	"strings"
	"time"
)

const signature = "\n\nWith love,\nFamiList"

// TaskCreated announces a new task to the family.
func TaskCreated(title, creatorName string) (subject, body string) {
	subject = fmt.Sprintf("New task added: %s", title)
	body = fmt.Sprintf(
		"Hello family,\n\nA new task was added to the board: %s\nCreated by: %s\nNo volunteer yet.\n\n"+
			"Open FamiList to volunteer.", title, creatorName) + signature
	return subject, body
}

// UnclaimedDigest lists the tasks still waiting for a volunteer.
func UnclaimedDigest(familyName string, titles []string) (subject, body string) {
	subject = fmt.Sprintf("Reminder: %d tasks waiting for a volunteer", len(titles))

	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s family,\n\n", familyName)
	fmt.Fprintf(&b, "There are %d tasks waiting for a volunteer:\n\n", len(titles))
	for _, t := range titles {
		fmt.Fprintf(&b, "• %s\n", t)
	}
	b.WriteString("\nIf anyone can help, open FamiList and volunteer. Thank you for sharing the load!")
	b.WriteString(signature)
	return subject, b.String()
}

// DueTomorrow reminds a volunteer about a task due the next day.
func DueTomorrow(title string, due time.Time) (subject, body string) {
	subject = fmt.Sprintf("Reminder: task due - %s", title)
	body = fmt.Sprintf(
		"Hello,\n\nA friendly reminder: you have a task due tomorrow: %s\nDue date: %s\n\n"+
			"If it's already done, mark it complete on the board.\n"+
			"If something needs to change, you can edit the task.",
		title, due.Format("02/01/2006")) + signature
	return subject, body
}

// MemberInvite gives a newly added member their sign-in details.
func MemberInvite(familyName, inviterName, email, tempPassword string) (subject, body string) {
	subject = fmt.Sprintf("You've been added to %s on FamiList", familyName)
	body = fmt.Sprintf(
		"Hello,\n\n%s added you to the %s family on FamiList.\n\n"+
			"Sign in with:\nEmail: %s\nTemporary password: %s\n\n"+
			"Please change your password after signing in.",
		inviterName, familyName, email, tempPassword) + signature
	return subject, body
}
