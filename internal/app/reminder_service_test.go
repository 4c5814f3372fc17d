package app

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/example/rappel/internal/models"
	"github.com/example/rappel/internal/ports/secondary"
)

func newTestReminderService(registry *fakeRegistry, channel *fakeChannel, runLog *fakeRunLog, dryRun bool, rateLimit time.Duration) *ReminderServiceImpl {
	var rl secondary.RunLogRepository
	if runLog != nil {
		rl = runLog
	}
	svc := NewReminderService(registry, channel, rl, dryRun, rateLimit, 2)
	svc.clock = func() time.Time { return testClock }
	svc.newID = func() string { return "run-id" }
	return svc
}

// Three people: one already answered, two unanswered with channel ids.
// Exactly the two unanswered people get a message.
func TestSendRemindersOnlyUnanswered(t *testing.T) {
	registry := newFakeRegistry()
	form := seedForm(registry)
	registry.people = []models.Person{
		{ID: "p1", DisplayName: "Alice", ChannelID: "chan-a"},
		{ID: "p2", DisplayName: "Bob", ChannelID: "chan-b"},
		{ID: "p3", DisplayName: "Carol", ChannelID: "chan-c"},
	}
	registry.responses[form.ID] = []models.ResponseRecord{
		{ID: "r1", FormID: form.ID, PersonID: "p1", Answered: true},
		{ID: "r2", FormID: form.ID, PersonID: "p2"},
		{ID: "r3", FormID: form.ID, PersonID: "p3"},
	}
	channel := &fakeChannel{}

	svc := newTestReminderService(registry, channel, nil, false, 0)
	result, err := svc.SendReminders(context.Background(), "ext-1")
	if err != nil {
		t.Fatalf("SendReminders() error = %v", err)
	}

	if result.Sent != 2 {
		t.Errorf("Sent = %d, want 2", result.Sent)
	}
	if len(channel.sent) != 2 {
		t.Fatalf("channel received %d sends, want 2", len(channel.sent))
	}
	got := map[string]bool{}
	for _, call := range channel.sent {
		got[call.ChannelID] = true
	}
	if got["chan-a"] {
		t.Error("answered person received a reminder")
	}
	if !got["chan-b"] || !got["chan-c"] {
		t.Errorf("sent to %v, want chan-b and chan-c", got)
	}
	if _, ok := registry.touched["r2"]; !ok {
		t.Error("r2 last-reminder not stamped")
	}
	if _, ok := registry.touched["r1"]; ok {
		t.Error("answered record's last-reminder stamped")
	}
}

func TestSendRemindersSkipsMissingChannel(t *testing.T) {
	registry := newFakeRegistry()
	form := seedForm(registry)
	registry.people = []models.Person{
		{ID: "p1", DisplayName: "Alice", ChannelID: "chan-a"},
		{ID: "p2", DisplayName: "Bob", Email: "bob@example.com"}, // email but no channel
	}
	registry.responses[form.ID] = []models.ResponseRecord{
		{ID: "r1", FormID: form.ID, PersonID: "p1"},
		{ID: "r2", FormID: form.ID, PersonID: "p2"},
	}
	channel := &fakeChannel{}

	svc := newTestReminderService(registry, channel, nil, false, 0)
	result, err := svc.SendReminders(context.Background(), "ext-1")
	if err != nil {
		t.Fatalf("SendReminders() error = %v", err)
	}

	if result.Sent != 1 {
		t.Errorf("Sent = %d, want 1", result.Sent)
	}
	if result.SkippedNoChannel != 1 {
		t.Errorf("SkippedNoChannel = %d, want 1", result.SkippedNoChannel)
	}
	if result.SendFailed != 0 {
		t.Errorf("SendFailed = %d, want 0", result.SendFailed)
	}
	if _, ok := registry.touched["r2"]; ok {
		t.Error("skipped record's last-reminder stamped")
	}
}

func TestSendRemindersFailureDoesNotStamp(t *testing.T) {
	registry := newFakeRegistry()
	form := seedForm(registry)
	registry.people = []models.Person{
		{ID: "p1", DisplayName: "Alice", ChannelID: "chan-a"},
		{ID: "p2", DisplayName: "Bob", ChannelID: "chan-b"},
	}
	registry.responses[form.ID] = []models.ResponseRecord{
		{ID: "r1", FormID: form.ID, PersonID: "p1"},
		{ID: "r2", FormID: form.ID, PersonID: "p2"},
	}
	channel := &fakeChannel{failFor: map[string]bool{"chan-a": true}}

	svc := newTestReminderService(registry, channel, nil, false, 0)
	result, err := svc.SendReminders(context.Background(), "ext-1")
	if err != nil {
		t.Fatalf("SendReminders() error = %v", err)
	}

	if result.Sent != 1 {
		t.Errorf("Sent = %d, want 1", result.Sent)
	}
	if result.SendFailed != 1 {
		t.Errorf("SendFailed = %d, want 1", result.SendFailed)
	}
	if _, ok := registry.touched["r1"]; ok {
		t.Error("failed send's record stamped, want untouched for retry")
	}
	if _, ok := registry.touched["r2"]; !ok {
		t.Error("successful send's record not stamped")
	}
}

func TestSendRemindersDryRunParity(t *testing.T) {
	registry := newFakeRegistry()
	form := seedForm(registry)
	registry.people = []models.Person{
		{ID: "p1", DisplayName: "Alice", ChannelID: "chan-a"},
	}
	registry.responses[form.ID] = []models.ResponseRecord{
		{ID: "r1", FormID: form.ID, PersonID: "p1"},
	}
	channel := &fakeChannel{}

	svc := newTestReminderService(registry, channel, nil, true, 50*time.Millisecond)
	var sleeps int
	svc.sleep = func(time.Duration) { sleeps++ }

	result, err := svc.SendReminders(context.Background(), "ext-1")
	if err != nil {
		t.Fatalf("SendReminders() error = %v", err)
	}

	if !result.DryRun {
		t.Error("DryRun = false, want true")
	}
	if result.Sent != 1 {
		t.Errorf("Sent = %d, want 1", result.Sent)
	}
	if len(channel.sent) != 0 {
		t.Errorf("channel received %d sends under dry-run, want 0", len(channel.sent))
	}
	// Dry-run still walks the state transition.
	if got, ok := registry.touched["r1"]; !ok || !got.Equal(testClock) {
		t.Errorf("r1 last-reminder = %v, want %v", got, testClock)
	}
	if sleeps != 0 {
		t.Errorf("slept %d times under dry-run, want 0", sleeps)
	}
}

func TestSendRemindersRateLimitAfterSuccessOnly(t *testing.T) {
	registry := newFakeRegistry()
	form := seedForm(registry)
	registry.people = []models.Person{
		{ID: "p1", DisplayName: "Alice", ChannelID: "chan-a"},
		{ID: "p2", DisplayName: "Bob", ChannelID: "chan-b"},
		{ID: "p3", DisplayName: "Carol", ChannelID: "chan-c"},
	}
	registry.responses[form.ID] = []models.ResponseRecord{
		{ID: "r1", FormID: form.ID, PersonID: "p1"},
		{ID: "r2", FormID: form.ID, PersonID: "p2"},
		{ID: "r3", FormID: form.ID, PersonID: "p3"},
	}
	channel := &fakeChannel{failFor: map[string]bool{"chan-b": true}}

	svc := newTestReminderService(registry, channel, nil, false, 100*time.Millisecond)
	var sleeps int
	svc.sleep = func(d time.Duration) {
		if d != 100*time.Millisecond {
			t.Errorf("slept %v, want 100ms", d)
		}
		sleeps++
	}

	result, err := svc.SendReminders(context.Background(), "ext-1")
	if err != nil {
		t.Fatalf("SendReminders() error = %v", err)
	}
	if result.Sent != 2 {
		t.Errorf("Sent = %d, want 2", result.Sent)
	}
	if sleeps != 2 {
		t.Errorf("slept %d times, want 2 (one per successful send)", sleeps)
	}
}

func TestSendRemindersMessageContent(t *testing.T) {
	registry := newFakeRegistry()
	dispatched := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	form := models.FormDefinition{
		ID: "form-page-1", ExternalFormID: "ext-1",
		Title: "Spring Survey", Link: "https://forms.example.com/ext-1",
		DispatchedAt: &dispatched,
	}
	registry.forms = append(registry.forms, form)
	registry.people = []models.Person{
		{ID: "p1", DisplayName: "Alice", ChannelID: "chan-a"},
	}
	registry.responses[form.ID] = []models.ResponseRecord{
		{ID: "r1", FormID: form.ID, PersonID: "p1"},
	}
	channel := &fakeChannel{}

	svc := newTestReminderService(registry, channel, nil, false, 0)
	if _, err := svc.SendReminders(context.Background(), "ext-1"); err != nil {
		t.Fatalf("SendReminders() error = %v", err)
	}

	if len(channel.sent) != 1 {
		t.Fatalf("channel received %d sends, want 1", len(channel.sent))
	}
	text := channel.sent[0].Text
	for _, want := range []string{"Hello Alice,", "Spring Survey", "1 March 2024", "https://forms.example.com/ext-1"} {
		if !strings.Contains(text, want) {
			t.Errorf("message missing %q:\n%s", want, text)
		}
	}
}

func TestSendRemindersUnknownForm(t *testing.T) {
	registry := newFakeRegistry()
	svc := newTestReminderService(registry, &fakeChannel{}, nil, false, 0)

	_, err := svc.SendReminders(context.Background(), "missing")
	if !errors.Is(err, models.ErrFormNotFound) {
		t.Errorf("SendReminders() error = %v, want ErrFormNotFound", err)
	}
}

func TestSendRemindersRecordsHistory(t *testing.T) {
	registry := newFakeRegistry()
	form := seedForm(registry)
	registry.people = []models.Person{
		{ID: "p1", DisplayName: "Alice", ChannelID: "chan-a"},
	}
	registry.responses[form.ID] = []models.ResponseRecord{
		{ID: "r1", FormID: form.ID, PersonID: "p1"},
	}
	runLog := &fakeRunLog{}

	svc := newTestReminderService(registry, &fakeChannel{}, runLog, true, 0)
	if _, err := svc.SendReminders(context.Background(), "ext-1"); err != nil {
		t.Fatalf("SendReminders() error = %v", err)
	}

	if len(runLog.records) != 1 {
		t.Fatalf("run log has %d records, want 1", len(runLog.records))
	}
	run := runLog.records[0]
	if run.Operation != secondary.OpDispatch {
		t.Errorf("Operation = %q, want %q", run.Operation, secondary.OpDispatch)
	}
	if !run.DryRun {
		t.Error("DryRun = false, want true")
	}
	if run.Count != 1 {
		t.Errorf("Count = %d, want 1", run.Count)
	}
}

func TestSendRemindersAllCoversEveryForm(t *testing.T) {
	registry := newFakeRegistry()
	registry.forms = []models.FormDefinition{
		{ID: "form-page-1", ExternalFormID: "ext-1", Title: "First"},
		{ID: "form-page-2", ExternalFormID: "ext-2", Title: "Second"},
	}
	registry.people = []models.Person{
		{ID: "p1", DisplayName: "Alice", ChannelID: "chan-a"},
	}
	registry.responses["form-page-1"] = []models.ResponseRecord{
		{ID: "r1", FormID: "form-page-1", PersonID: "p1"},
	}
	channel := &fakeChannel{}

	svc := newTestReminderService(registry, channel, nil, false, 0)
	summary, err := svc.SendRemindersAll(context.Background())
	if err != nil {
		t.Fatalf("SendRemindersAll() error = %v", err)
	}

	if len(summary.Forms) != 2 {
		t.Fatalf("summary has %d forms, want 2", len(summary.Forms))
	}
	if got := summary.Forms["ext-1"].Result.Sent; got != 1 {
		t.Errorf("ext-1 Sent = %d, want 1", got)
	}
	if got := summary.Forms["ext-2"].Result.Sent; got != 0 {
		t.Errorf("ext-2 Sent = %d, want 0", got)
	}
}

func TestStatusCounts(t *testing.T) {
	registry := newFakeRegistry()
	registry.forms = []models.FormDefinition{
		{ID: "form-page-1", ExternalFormID: "ext-1", Title: "First"},
	}
	registry.responses["form-page-1"] = []models.ResponseRecord{
		{ID: "r1", FormID: "form-page-1", PersonID: "p1", Answered: true},
		{ID: "r2", FormID: "form-page-1", PersonID: "p2"},
		{ID: "r3", FormID: "form-page-1", PersonID: "p3"},
	}

	svc := newTestReminderService(registry, &fakeChannel{}, nil, false, 0)
	statuses, err := svc.Status(context.Background())
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}

	if len(statuses) != 1 {
		t.Fatalf("got %d statuses, want 1", len(statuses))
	}
	s := statuses[0]
	if s.Tracked != 3 || s.Answered != 1 || s.Unanswered != 2 {
		t.Errorf("status = %+v, want 3 tracked / 1 answered / 2 unanswered", s)
	}
	if len(registry.marked) != 0 || len(registry.touched) != 0 {
		t.Error("Status() wrote to the registry")
	}
}

func TestSendRemindersStopsOnCancelledContext(t *testing.T) {
	registry := newFakeRegistry()
	form := seedForm(registry)
	registry.people = []models.Person{
		{ID: "p1", DisplayName: "Alice", ChannelID: "chan-a"},
	}
	registry.responses[form.ID] = []models.ResponseRecord{
		{ID: "r1", FormID: form.ID, PersonID: "p1"},
	}
	channel := &fakeChannel{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := newTestReminderService(registry, channel, nil, false, 0)
	result, err := svc.SendReminders(ctx, "ext-1")
	if err != nil {
		t.Fatalf("SendReminders() error = %v", err)
	}
	if result.Sent != 0 {
		t.Errorf("Sent = %d, want 0 after cancellation", result.Sent)
	}
	if len(channel.sent) != 0 {
		t.Errorf("channel received %d sends after cancellation, want 0", len(channel.sent))
	}
}
