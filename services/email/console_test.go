package emailsvc

import (
	"net/mail"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bigplans/backend/core"
)

func testConfig() *core.Config {
	return &core.Config{
		AppName:         "BigPlans",
		FrontendBaseURL: "http://localhost:5173",
		DefaultFromName: "BigPlans",
		DefaultFromAddr: "noreply@bigplans.test",
	}
}

func TestConsoleService_format(t *testing.T) {
	svc := NewConsoleService(testConfig(), core.NopLogger{}).(*consoleService)

	body, err := svc.format(core.EmailMessage{
		To:          []mail.Address{{Name: "Zoe", Address: "zoe@example.com"}, {Address: "max@example.com"}},
		Subject:     "Hi",
		TextContent: "plain",
		HTMLContent: "<p>html</p>",
	})
	require.NoError(t, err)
	assert.Contains(t, body, "From: \"BigPlans\" <noreply@bigplans.test>\r\n")
	assert.Contains(t, body, "Subject: [BigPlans] Hi\r\n")
	assert.Contains(t, body, "To: \"Zoe\" <zoe@example.com>, <max@example.com>\r\n")
	assert.Contains(t, body, "Content-Type: multipart/alternative; boundary=")
	assert.Contains(t, body, "Content-Type: text/html")
	assert.True(t, strings.Index(body, "plain") < strings.Index(body, "<p>html</p>"), "text part comes first")
}

func TestConsoleServiceMock_SendMessages(t *testing.T) {
	svc := NewConsoleServiceMock(testConfig())

	svc.SendMessages(
		&core.EmailMessage{To: []mail.Address{{Address: "zoe@example.com"}}, Subject: "one", BodyStr: "hello"},
		&core.EmailMessage{Subject: "no recipient", BodyStr: "dropped"},
		&core.EmailMessage{To: []mail.Address{{Address: "zoe@example.com"}}, Subject: "broken", TemplateName: "lol"},
	)

	sent := svc.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "one", sent[0].Subject)
	assert.Equal(t, "hello", sent[0].TextContent)
}

func TestSendgridService_prepare(t *testing.T) {
	svc := NewSendgridService(testConfig(), core.NopLogger{})

	m := svc.prepare(core.EmailMessage{
		To:          []mail.Address{{Name: "Zoe", Address: "zoe@example.com"}},
		Subject:     "Hi",
		TextContent: "plain",
	})
	require.Len(t, m.Personalizations, 1)
	assert.Equal(t, "[BigPlans] Hi", m.Personalizations[0].Subject)
	assert.Equal(t, "zoe@example.com", m.Personalizations[0].To[0].Address)
	assert.Equal(t, "noreply@bigplans.test", m.From.Address)
	require.Len(t, m.Content, 1, "no html part without HTMLContent")
	assert.Equal(t, "text/plain", m.Content[0].Type)
}
