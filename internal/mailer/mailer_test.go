package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"

	"github.com/dtroode/taskhub-auth/internal/testutil"
)

type fakeDialer struct {
	err  error
	sent []*mail.Msg
}

func (f *fakeDialer) DialAndSendWithContext(_ context.Context, messages ...*mail.Msg) error {
	f.sent = append(f.sent, messages...)
	return f.err
}

type fakeMailer struct {
	result bool
	calls  int
}

func (f *fakeMailer) Send(_ context.Context, _, _, _ string) bool {
	f.calls++
	return f.result
}

type fakeStorage struct {
	err         error
	key         string
	contentType string
	body        []byte
}

func (f *fakeStorage) Upload(_ context.Context, key, contentType string, r io.Reader, _ int64) error {
	if f.err != nil {
		return f.err
	}
	f.key = key
	f.contentType = contentType
	f.body, _ = io.ReadAll(r)
	return nil
}

func TestTemplates(t *testing.T) {
	body, err := VerificationBody("https://app.example.com/verify-email?token=abc")
	require.NoError(t, err)
	assert.Contains(t, body, `href="https://app.example.com/verify-email?token=abc"`)
	assert.Contains(t, body, "verify your email")

	body, err = PasswordResetBody("https://app.example.com/reset-password?token=a&b=<c>")
	require.NoError(t, err)
	assert.Contains(t, body, "reset your password")
	assert.NotContains(t, body, "<c>")
}

func TestSMTP_Send(t *testing.T) {
	d := &fakeDialer{}
	s := &SMTP{client: d, from: "TaskHub <no-reply@taskhub.local>", logger: testutil.MakeNoopLogger()}

	ok := s.Send(context.Background(), "a@x.com", SubjectVerifyEmail, "<p>hi</p>")
	assert.True(t, ok)
	require.Len(t, d.sent, 1)
	assert.Equal(t, []string{SubjectVerifyEmail}, d.sent[0].GetGenHeader(mail.HeaderSubject))
}

func TestSMTP_Send_Failures(t *testing.T) {
	d := &fakeDialer{err: errors.New("connection refused")}
	s := &SMTP{client: d, from: "no-reply@taskhub.local", logger: testutil.MakeNoopLogger()}

	assert.False(t, s.Send(context.Background(), "a@x.com", "s", "b"))
	assert.False(t, s.Send(context.Background(), "not an address", "s", "b"))

	bad := &SMTP{client: &fakeDialer{}, from: "", logger: testutil.MakeNoopLogger()}
	assert.False(t, bad.Send(context.Background(), "a@x.com", "s", "b"))
}

func TestNewSMTP(t *testing.T) {
	s, err := NewSMTP(SMTPConfig{Host: "smtp.example.com", Port: 587, Username: "u", Password: "p", From: "a@b.c"}, testutil.MakeNoopLogger())
	require.NoError(t, err)
	assert.NotNil(t, s.client)

	_, err = NewSMTP(SMTPConfig{Host: "", Port: 587}, testutil.MakeNoopLogger())
	assert.Error(t, err)
}

func TestLog_Send(t *testing.T) {
	assert.True(t, NewLog(testutil.MakeNoopLogger()).Send(context.Background(), "a@x.com", "s", "b"))
}

func TestArchiving_Send(t *testing.T) {
	next := &fakeMailer{result: false}
	store := &fakeStorage{}
	a := NewArchiving(next, store, testutil.MakeNoopLogger())
	a.now = func() time.Time { return time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC) }

	ok := a.Send(context.Background(), "a@x.com", SubjectResetPassword, "<p>reset</p>")
	assert.False(t, ok)
	assert.Equal(t, 1, next.calls)
	assert.Regexp(t, `^2025/03/04/[0-9a-f-]{36}\.json$`, store.key)
	assert.Equal(t, "application/json", store.contentType)

	var msg ArchivedMessage
	require.NoError(t, json.Unmarshal(store.body, &msg))
	assert.Equal(t, "a@x.com", msg.To)
	assert.Equal(t, SubjectResetPassword, msg.Subject)
	assert.False(t, msg.Delivered)
}

func TestArchiving_StorageFailureKeepsResult(t *testing.T) {
	next := &fakeMailer{result: true}
	a := NewArchiving(next, &fakeStorage{err: errors.New("bucket gone")}, testutil.MakeNoopLogger())

	assert.True(t, a.Send(context.Background(), "a@x.com", "s", "b"))
}
