package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/sandy2008/recovery-compass/internal/models"
	"github.com/sandy2008/recovery-compass/internal/repository"
)

type fakeLogRepo struct {
	logs       map[string]*models.DailyLog
	nextID     int
	createErr  error
	updateErr  error
	fieldCalls []map[string]interface{}
	fieldErr   error
}

func newFakeLogRepo() *fakeLogRepo {
	return &fakeLogRepo{logs: make(map[string]*models.DailyLog)}
}

func (f *fakeLogRepo) CreateLog(ctx context.Context, userID string, log *models.DailyLog) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	for _, existing := range f.logs {
		if existing.Date == log.Date {
			return "", repository.ErrDuplicateDate
		}
	}
	f.nextID++
	id := fmt.Sprintf("log-%d", f.nextID)
	stored := *log
	stored.ID = id
	f.logs[id] = &stored
	return id, nil
}

func (f *fakeLogRepo) UpdateLog(ctx context.Context, userID, logID string, log *models.DailyLog) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	stored := *log
	stored.ID = logID
	f.logs[logID] = &stored
	return nil
}

func (f *fakeLogRepo) SetLogFields(ctx context.Context, userID, logID string, fields map[string]interface{}) error {
	if f.fieldErr != nil {
		return f.fieldErr
	}
	f.fieldCalls = append(f.fieldCalls, fields)
	stored, ok := f.logs[logID]
	if !ok {
		return errors.New("not found")
	}
	if tips, ok := fields["recoveryTips"].(string); ok {
		stored.RecoveryTips = tips
	}
	if mood, ok := fields["mood"].(string); ok {
		stored.Mood = mood
	}
	if updatedAt, ok := fields["updatedAt"].(time.Time); ok {
		stored.UpdatedAt = updatedAt
	}
	return nil
}

func (f *fakeLogRepo) GetLogByID(ctx context.Context, userID, logID string) (*models.DailyLog, error) {
	stored, ok := f.logs[logID]
	if !ok {
		return nil, errors.New("not found")
	}
	copied := *stored
	return &copied, nil
}

func (f *fakeLogRepo) FindLogByDate(ctx context.Context, userID, date string) (*models.DailyLog, error) {
	for _, stored := range f.logs {
		if stored.Date == date {
			copied := *stored
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeLogRepo) GetLatestLog(ctx context.Context, userID string) (*models.DailyLog, error) {
	var latest *models.DailyLog
	for _, stored := range f.logs {
		if latest == nil || stored.Date > latest.Date {
			latest = stored
		}
	}
	if latest == nil {
		return nil, nil
	}
	copied := *latest
	return &copied, nil
}

type uploadCall struct {
	path        string
	contentType string
	size        int
}

type fakePhotoStore struct {
	uploads   []uploadCall
	deletes   []string
	uploadErr error
	deleteErr error
}

func (f *fakePhotoStore) Upload(ctx context.Context, path string, data []byte, contentType string) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	f.uploads = append(f.uploads, uploadCall{path: path, contentType: contentType, size: len(data)})
	return "https://storage.googleapis.com/test-bucket/" + path, nil
}

func (f *fakePhotoStore) Delete(ctx context.Context, path string) error {
	f.deletes = append(f.deletes, path)
	return f.deleteErr
}

type fakeTipGenerator struct {
	tips   string
	err    error
	inputs []*TipInput
}

func (f *fakeTipGenerator) GenerateRecoveryTips(ctx context.Context, input *TipInput) (string, error) {
	f.inputs = append(f.inputs, input)
	if f.err != nil {
		return "", f.err
	}
	return f.tips, nil
}

type fakeProfileReader struct {
	profile *models.UserProfile
	err     error
}

func (f *fakeProfileReader) GetUserByID(ctx context.Context, userID string) (*models.UserProfile, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.profile, nil
}

func testProfile() *models.UserProfile {
	return &models.UserProfile{
		UserID:      "user-1",
		Name:        "Alex",
		Email:       "alex@example.com",
		SurgeryType: "Knee Replacement",
		SurgeryDate: "2023-12-20",
	}
}

type serviceFixture struct {
	service *LogService
	repo    *fakeLogRepo
	photos  *fakePhotoStore
	tips    *fakeTipGenerator
	users   *fakeProfileReader
}

func newFixture() *serviceFixture {
	repo := newFakeLogRepo()
	photos := &fakePhotoStore{}
	tips := &fakeTipGenerator{tips: "Rest and elevate the leg."}
	users := &fakeProfileReader{profile: testProfile()}
	service := NewLogService(repo, users, photos, tips)
	service.now = func() time.Time {
		return time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	}
	return &serviceFixture{service: service, repo: repo, photos: photos, tips: tips, users: users}
}

func baseSubmission() *LogSubmission {
	return &LogSubmission{
		Date:             "2024-01-10",
		PainLevel:        7,
		SwellingLevel:    4,
		MedicationsTaken: []string{"Paracetamol"},
		Mood:             "😊",
	}
}

func TestSubmitLogRejectsPainOutOfRange(t *testing.T) {
	fx := newFixture()
	for _, level := range []int{-1, 11, 42} {
		sub := baseSubmission()
		sub.PainLevel = level
		_, err := fx.service.SubmitLog(context.Background(), "user-1", "", sub)
		var vErr *ValidationError
		if !errors.As(err, &vErr) || vErr.Field != "painLevel" {
			t.Fatalf("painLevel=%d: expected painLevel validation error, got %v", level, err)
		}
	}
	if len(fx.repo.logs) != 0 || len(fx.photos.uploads) != 0 || len(fx.tips.inputs) != 0 {
		t.Fatal("validation failure must not issue any storage or model calls")
	}
}

func TestSubmitLogRejectsSwellingOutOfRange(t *testing.T) {
	fx := newFixture()
	sub := baseSubmission()
	sub.SwellingLevel = 11
	_, err := fx.service.SubmitLog(context.Background(), "user-1", "", sub)
	var vErr *ValidationError
	if !errors.As(err, &vErr) || vErr.Field != "swellingLevel" {
		t.Fatalf("expected swellingLevel validation error, got %v", err)
	}
}

func TestSubmitLogRejectsLongNotes(t *testing.T) {
	fx := newFixture()
	sub := baseSubmission()
	sub.Notes = strings.Repeat("x", MaxNotesLength+1)
	_, err := fx.service.SubmitLog(context.Background(), "user-1", "", sub)
	var vErr *ValidationError
	if !errors.As(err, &vErr) || vErr.Field != "notes" {
		t.Fatalf("expected notes validation error, got %v", err)
	}
	if len(fx.repo.logs) != 0 {
		t.Fatal("rejected submission must not be persisted")
	}
}

func TestSubmitLogRejectsOversizePhoto(t *testing.T) {
	fx := newFixture()
	sub := baseSubmission()
	sub.Photo = &PhotoUpload{
		Filename:    "wound.jpg",
		ContentType: "image/jpeg",
		Data:        make([]byte, MaxPhotoSize+1),
	}
	_, err := fx.service.SubmitLog(context.Background(), "user-1", "", sub)
	var vErr *ValidationError
	if !errors.As(err, &vErr) || vErr.Field != "photo" {
		t.Fatalf("expected photo validation error, got %v", err)
	}
	if len(fx.photos.uploads) != 0 {
		t.Fatal("oversize photo must not be uploaded")
	}
}

func TestSubmitLogRejectsDisallowedPhotoType(t *testing.T) {
	fx := newFixture()
	sub := baseSubmission()
	sub.Photo = &PhotoUpload{
		Filename:    "scan.pdf",
		ContentType: "application/pdf",
		Data:        []byte("not an image"),
	}
	_, err := fx.service.SubmitLog(context.Background(), "user-1", "", sub)
	var vErr *ValidationError
	if !errors.As(err, &vErr) || vErr.Field != "photo" {
		t.Fatalf("expected photo validation error, got %v", err)
	}
	if len(fx.photos.uploads) != 0 {
		t.Fatal("disallowed photo type must not be uploaded")
	}
}

func TestSubmitLogCreateScenario(t *testing.T) {
	fx := newFixture()
	result, err := fx.service.SubmitLog(context.Background(), "user-1", "", baseSubmission())
	if err != nil {
		t.Fatalf("SubmitLog() unexpected error: %v", err)
	}
	if !result.Created {
		t.Fatal("expected a created log")
	}
	entry := result.Log
	if entry.CustomMedication != "" {
		t.Fatalf("expected customMedication to stay empty, got %q", entry.CustomMedication)
	}
	if len(entry.MedicationsTaken) != 1 || entry.MedicationsTaken[0] != "Paracetamol" {
		t.Fatalf("unexpected medications: %#v", entry.MedicationsTaken)
	}
	if len(fx.tips.inputs) != 1 {
		t.Fatalf("expected one tip call, got %d", len(fx.tips.inputs))
	}
	input := fx.tips.inputs[0]
	if input.Notes != NoNotesPlaceholder {
		t.Fatalf("expected notes placeholder %q, got %q", NoNotesPlaceholder, input.Notes)
	}
	if input.MedicationTaken != "Paracetamol" {
		t.Fatalf("unexpected medication string: %q", input.MedicationTaken)
	}
	if input.SurgeryType != "Knee Replacement" || input.UserName != "Alex" {
		t.Fatalf("profile fields not carried into tip input: %#v", input)
	}
	if result.Tips != "Rest and elevate the leg." {
		t.Fatalf("unexpected tips: %q", result.Tips)
	}
}

func TestSubmitLogDuplicateDateConflict(t *testing.T) {
	fx := newFixture()
	if _, err := fx.service.SubmitLog(context.Background(), "user-1", "", baseSubmission()); err != nil {
		t.Fatalf("first submission failed: %v", err)
	}

	_, err := fx.service.SubmitLog(context.Background(), "user-1", "", baseSubmission())
	if !errors.Is(err, repository.ErrDuplicateDate) {
		t.Fatalf("expected ErrDuplicateDate, got %v", err)
	}
	if len(fx.repo.logs) != 1 {
		t.Fatalf("conflict must not create a second document, have %d", len(fx.repo.logs))
	}
}

func TestSubmitLogCustomMedicationPromoted(t *testing.T) {
	fx := newFixture()
	sub := baseSubmission()
	sub.MedicationsTaken = []string{"Paracetamol", "Other"}
	sub.CustomMedication = "Turmeric capsules"

	result, err := fx.service.SubmitLog(context.Background(), "user-1", "", sub)
	if err != nil {
		t.Fatalf("SubmitLog() unexpected error: %v", err)
	}

	entry := result.Log
	if entry.CustomMedication != "Turmeric capsules" {
		t.Fatalf("expected customMedication %q, got %q", "Turmeric capsules", entry.CustomMedication)
	}
	for _, m := range entry.MedicationsTaken {
		if m == "Other" {
			t.Fatal("literal \"Other\" must not be stored")
		}
	}
	found := false
	for _, m := range entry.MedicationsTaken {
		if m == "Turmeric capsules" {
			found = true
		}
	}
	if !found {
		t.Fatalf("custom medication missing from %#v", entry.MedicationsTaken)
	}
}

func TestSubmitLogOtherWithoutCustomValue(t *testing.T) {
	fx := newFixture()
	sub := baseSubmission()
	sub.MedicationsTaken = []string{"Other"}

	result, err := fx.service.SubmitLog(context.Background(), "user-1", "", sub)
	if err != nil {
		t.Fatalf("SubmitLog() unexpected error: %v", err)
	}
	if result.Log.CustomMedication != "" {
		t.Fatalf("customMedication must stay cleared, got %q", result.Log.CustomMedication)
	}
}

func TestSubmitLogNewPhotoUploaded(t *testing.T) {
	fx := newFixture()
	sub := baseSubmission()
	sub.Photo = &PhotoUpload{Filename: "wound.jpg", ContentType: "image/jpeg", Data: []byte("jpegdata")}

	result, err := fx.service.SubmitLog(context.Background(), "user-1", "", sub)
	if err != nil {
		t.Fatalf("SubmitLog() unexpected error: %v", err)
	}

	if len(fx.photos.uploads) != 1 {
		t.Fatalf("expected one upload, got %d", len(fx.photos.uploads))
	}
	wantPath := "users/user-1/logs/2024-01-10_wound.jpg"
	if fx.photos.uploads[0].path != wantPath {
		t.Fatalf("expected upload path %q, got %q", wantPath, fx.photos.uploads[0].path)
	}
	if result.Log.PhotoURL == "" || result.Log.PhotoPath == "" {
		t.Fatal("photoUrl and photoPath must both be set after an upload")
	}
	if !strings.HasPrefix(fx.tips.inputs[0].PhotoDataURI, "data:image/jpeg;base64,") {
		t.Fatalf("new photo must reach the model as a data URI, got %q", fx.tips.inputs[0].PhotoDataURI)
	}
}

func TestSubmitLogReplacePhotoDeletesOld(t *testing.T) {
	fx := newFixture()
	fx.repo.logs["log-7"] = &models.DailyLog{
		ID:        "log-7",
		UserID:    "user-1",
		Date:      "2024-01-10",
		PhotoURL:  "https://storage.googleapis.com/test-bucket/users/user-1/logs/old.jpg",
		PhotoPath: "users/user-1/logs/old.jpg",
	}
	fx.photos.deleteErr = errors.New("object not found")

	sub := baseSubmission()
	sub.Photo = &PhotoUpload{Filename: "new.png", ContentType: "image/png", Data: []byte("pngdata")}

	result, err := fx.service.SubmitLog(context.Background(), "user-1", "log-7", sub)
	if err != nil {
		t.Fatalf("delete failure must not block the replacement: %v", err)
	}

	if len(fx.photos.deletes) != 1 || fx.photos.deletes[0] != "users/user-1/logs/old.jpg" {
		t.Fatalf("old object delete not attempted: %#v", fx.photos.deletes)
	}
	if result.Log.PhotoURL == "" || result.Log.PhotoPath == "" {
		t.Fatal("new photoUrl/photoPath must both be recorded")
	}
	if result.Log.PhotoPath == "users/user-1/logs/old.jpg" {
		t.Fatal("photoPath must point at the new object")
	}
}

func TestSubmitLogRemovePhoto(t *testing.T) {
	fx := newFixture()
	fx.repo.logs["log-7"] = &models.DailyLog{
		ID:        "log-7",
		UserID:    "user-1",
		Date:      "2024-01-10",
		PhotoURL:  "https://storage.googleapis.com/test-bucket/users/user-1/logs/old.jpg",
		PhotoPath: "users/user-1/logs/old.jpg",
	}

	sub := baseSubmission()
	sub.RemovePhoto = true

	result, err := fx.service.SubmitLog(context.Background(), "user-1", "log-7", sub)
	if err != nil {
		t.Fatalf("SubmitLog() unexpected error: %v", err)
	}

	if len(fx.photos.deletes) != 1 {
		t.Fatalf("stored object delete not attempted: %#v", fx.photos.deletes)
	}
	if result.Log.PhotoURL != "" || result.Log.PhotoPath != "" {
		t.Fatalf("photoUrl and photoPath must both be absent, got %q / %q", result.Log.PhotoURL, result.Log.PhotoPath)
	}
}

func TestSubmitLogCarriesPhotoForwardUnchanged(t *testing.T) {
	fx := newFixture()
	fx.repo.logs["log-7"] = &models.DailyLog{
		ID:        "log-7",
		UserID:    "user-1",
		Date:      "2024-01-10",
		PhotoURL:  "https://storage.googleapis.com/test-bucket/users/user-1/logs/old.jpg",
		PhotoPath: "users/user-1/logs/old.jpg",
	}

	result, err := fx.service.SubmitLog(context.Background(), "user-1", "log-7", baseSubmission())
	if err != nil {
		t.Fatalf("SubmitLog() unexpected error: %v", err)
	}

	if result.Log.PhotoURL == "" || result.Log.PhotoPath != "users/user-1/logs/old.jpg" {
		t.Fatalf("existing attachment must carry forward, got %q / %q", result.Log.PhotoURL, result.Log.PhotoPath)
	}
	if len(fx.photos.deletes) != 0 || len(fx.photos.uploads) != 0 {
		t.Fatal("no attachment change means no storage calls")
	}
	if fx.tips.inputs[0].PhotoDataURI != result.Log.PhotoURL {
		t.Fatalf("unchanged photo must reach the model by its stored URL, got %q", fx.tips.inputs[0].PhotoDataURI)
	}
}

func TestSubmitLogUploadFailureAbortsSubmission(t *testing.T) {
	fx := newFixture()
	fx.photos.uploadErr = errors.New("bucket unavailable")

	sub := baseSubmission()
	sub.Photo = &PhotoUpload{Filename: "wound.jpg", ContentType: "image/jpeg", Data: []byte("jpegdata")}

	_, err := fx.service.SubmitLog(context.Background(), "user-1", "", sub)
	if !errors.Is(err, ErrPhotoUpload) {
		t.Fatalf("expected ErrPhotoUpload, got %v", err)
	}
	if len(fx.repo.logs) != 0 {
		t.Fatal("log must not be written when the upload fails")
	}
	if len(fx.tips.inputs) != 0 {
		t.Fatal("tip generation must not run when the upload fails")
	}
}

func TestSubmitLogTipFailureIsIsolated(t *testing.T) {
	fx := newFixture()
	fx.tips.err = errors.New("model unavailable")

	result, err := fx.service.SubmitLog(context.Background(), "user-1", "", baseSubmission())
	if err != nil {
		t.Fatalf("tip failure must not fail the submission: %v", err)
	}
	if result.TipErr == nil {
		t.Fatal("tip failure must be reported on its own channel")
	}
	if result.Tips != "" {
		t.Fatalf("no tips expected, got %q", result.Tips)
	}

	stored := fx.repo.logs[result.Log.ID]
	if stored == nil {
		t.Fatal("log must remain persisted after a tip failure")
	}
	if stored.RecoveryTips != "" {
		t.Fatalf("recoveryTips must stay unchanged, got %q", stored.RecoveryTips)
	}
	if stored.PainLevel != 7 || stored.SwellingLevel != 4 {
		t.Fatal("persisted fields must be exactly as submitted")
	}
}

func TestSubmitLogTipSuccessWritesBack(t *testing.T) {
	fx := newFixture()
	result, err := fx.service.SubmitLog(context.Background(), "user-1", "", baseSubmission())
	if err != nil {
		t.Fatalf("SubmitLog() unexpected error: %v", err)
	}

	stored := fx.repo.logs[result.Log.ID]
	if stored.RecoveryTips != "Rest and elevate the leg." {
		t.Fatalf("tips not written back, got %q", stored.RecoveryTips)
	}
	if len(fx.repo.fieldCalls) != 1 {
		t.Fatalf("expected one field merge for the tips write-back, got %d", len(fx.repo.fieldCalls))
	}
	if _, ok := fx.repo.fieldCalls[0]["updatedAt"]; !ok {
		t.Fatal("tips write-back must refresh updatedAt")
	}
}

func TestSubmitLogEditIsIdempotentForFields(t *testing.T) {
	fx := newFixture()
	created, err := fx.service.SubmitLog(context.Background(), "user-1", "", baseSubmission())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	resubmitted, err := fx.service.SubmitLog(context.Background(), "user-1", created.Log.ID, baseSubmission())
	if err != nil {
		t.Fatalf("edit failed: %v", err)
	}

	if resubmitted.Created {
		t.Fatal("edit must not report a create")
	}
	if resubmitted.Log.Date != created.Log.Date ||
		resubmitted.Log.PainLevel != created.Log.PainLevel ||
		resubmitted.Log.SwellingLevel != created.Log.SwellingLevel ||
		resubmitted.Log.Mood != created.Log.Mood {
		t.Fatal("identical resubmission must produce identical field values")
	}
	if !resubmitted.Log.CreatedAt.Equal(created.Log.CreatedAt) {
		t.Fatal("createdAt must be preserved across edits")
	}
	if len(fx.tips.inputs) != 2 {
		t.Fatalf("every submission must re-trigger tip generation, got %d calls", len(fx.tips.inputs))
	}
}

func TestQuickLogMoodUpdatesTodaysLog(t *testing.T) {
	fx := newFixture()
	fx.repo.logs["log-1"] = &models.DailyLog{ID: "log-1", UserID: "user-1", Date: "2024-01-10", Mood: "😐"}

	entry, created, err := fx.service.QuickLogMood(context.Background(), "user-1", "😊", "2024-01-10")
	if err != nil {
		t.Fatalf("QuickLogMood() unexpected error: %v", err)
	}
	if created {
		t.Fatal("existing log for today must be updated, not recreated")
	}
	if entry.Mood != "😊" || fx.repo.logs["log-1"].Mood != "😊" {
		t.Fatalf("mood not updated: %q", fx.repo.logs["log-1"].Mood)
	}
}

func TestQuickLogMoodCreatesMinimalLog(t *testing.T) {
	fx := newFixture()
	entry, created, err := fx.service.QuickLogMood(context.Background(), "user-1", "😢", "2024-01-10")
	if err != nil {
		t.Fatalf("QuickLogMood() unexpected error: %v", err)
	}
	if !created {
		t.Fatal("expected a new minimal log")
	}
	if entry.PainLevel != 0 || entry.SwellingLevel != 0 || len(entry.MedicationsTaken) != 0 {
		t.Fatalf("minimal log has unexpected fields: %#v", entry)
	}
	if entry.Mood != "😢" || entry.Date != "2024-01-10" {
		t.Fatalf("minimal log mood/date wrong: %#v", entry)
	}
}

func TestQuickLogMoodRejectsUnknownEmoji(t *testing.T) {
	fx := newFixture()
	_, _, err := fx.service.QuickLogMood(context.Background(), "user-1", "🤖", "2024-01-10")
	var vErr *ValidationError
	if !errors.As(err, &vErr) || vErr.Field != "mood" {
		t.Fatalf("expected mood validation error, got %v", err)
	}
}

func TestRegenerateTipsRequiresALog(t *testing.T) {
	fx := newFixture()
	_, err := fx.service.RegenerateTips(context.Background(), "user-1")
	if err == nil || err.Error() != "no logs found" {
		t.Fatalf("expected no logs found, got %v", err)
	}
}

func TestRegenerateTipsWritesBackToLatestLog(t *testing.T) {
	fx := newFixture()
	fx.repo.logs["log-1"] = &models.DailyLog{ID: "log-1", UserID: "user-1", Date: "2024-01-09", PainLevel: 5, SwellingLevel: 3}
	fx.repo.logs["log-2"] = &models.DailyLog{ID: "log-2", UserID: "user-1", Date: "2024-01-10", PainLevel: 4, SwellingLevel: 2}

	tips, err := fx.service.RegenerateTips(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("RegenerateTips() unexpected error: %v", err)
	}
	if tips == "" {
		t.Fatal("expected tips")
	}
	if fx.repo.logs["log-2"].RecoveryTips != tips {
		t.Fatal("tips must be written onto the latest log")
	}
	if fx.repo.logs["log-1"].RecoveryTips != "" {
		t.Fatal("older logs must stay untouched")
	}
}

func TestGenerateManualTipsUsesPlaceholderNotes(t *testing.T) {
	fx := newFixture()
	_, err := fx.service.GenerateManualTips(context.Background(), "user-1", &models.ManualTipRequest{
		PainLevel:       6,
		SwellingLevel:   2,
		MedicationTaken: "Ibuprofen",
	})
	if err != nil {
		t.Fatalf("GenerateManualTips() unexpected error: %v", err)
	}
	if fx.tips.inputs[0].Notes != NoNotesPlaceholder {
		t.Fatalf("expected notes placeholder, got %q", fx.tips.inputs[0].Notes)
	}
	if len(fx.repo.fieldCalls) != 0 {
		t.Fatal("manual tips must not touch any log")
	}
}
