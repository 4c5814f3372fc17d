package reconcile

import "github.com/example/rappel/internal/models"

// ReminderTarget is one person due a reminder for a form.
type ReminderTarget struct {
	Record models.ResponseRecord
	Person models.Person
}

// ReminderPlan selects who receives a reminder. Skip counts stay separate
// from the send list: a missing channel id is not a delivery failure and is
// never folded into the sent count.
type ReminderPlan struct {
	Send             []ReminderTarget
	SkippedAnswered  int
	SkippedNoChannel int
	SkippedNoPerson  int
}

// GenerateReminderPlan selects eligible targets from a form's response
// records. A record is eligible when it is unanswered and its person has a
// resolvable channel id. Email is irrelevant here - someone the gateway can
// never match can still be reminded.
func GenerateReminderPlan(records []models.ResponseRecord, people map[string]models.Person) ReminderPlan {
	plan := ReminderPlan{}
	for _, rec := range records {
		if rec.Answered {
			plan.SkippedAnswered++
			continue
		}
		person, ok := people[rec.PersonID]
		if !ok || rec.PersonID == "" {
			plan.SkippedNoPerson++
			continue
		}
		if person.ChannelID == "" {
			plan.SkippedNoChannel++
			continue
		}
		plan.Send = append(plan.Send, ReminderTarget{Record: rec, Person: person})
	}
	return plan
}
