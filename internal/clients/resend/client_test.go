package resend

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockHTTPClient struct {
	mock.Mock
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	args := m.Called(req)
	return args.Get(0).(*http.Response), args.Error(1)
}

func Test_Send_ShouldBeSuccessful(t *testing.T) {

	assert := assert.New(t)

	mockClient := &mockHTTPClient{}
	mockClient.On("Do", mock.MatchedBy(func(req *http.Request) bool {
		if req.URL.String() != "https://api.resend.com/emails" ||
			req.Header.Get("Authorization") != "Bearer test-key" {
			return false
		}
		body, _ := io.ReadAll(req.Body)
		req.Body = io.NopCloser(bytes.NewReader(body))
		var msg Message
		if err := json.Unmarshal(body, &msg); err != nil {
			return false
		}
		return msg.Subject == "Interview Scheduled - Backend Engineer" &&
			len(msg.To) == 1 && msg.To[0] == "jane@example.com"
	})).Return(&http.Response{
		StatusCode: 200,
		Body:       io.NopCloser(bytes.NewBufferString(`{"id":"email-123"}`)),
	}, nil)

	client := NewClient("test-key")
	client.SetHTTPClient(mockClient)

	id, err := client.Send(context.Background(), Message{
		From:    "Recruitment <noreply@example.com>",
		To:      []string{"jane@example.com"},
		Subject: "Interview Scheduled - Backend Engineer",
		Text:    "see you there",
	})
	assert.NoError(err)
	assert.Equal("email-123", id)
}

func Test_Send_ProviderRejects_ReturnsError(t *testing.T) {

	mockClient := &mockHTTPClient{}
	mockClient.On("Do", mock.Anything).Return(&http.Response{
		StatusCode: 422,
		Body:       io.NopCloser(bytes.NewBufferString(`{"message":"invalid from"}`)),
	}, nil)

	client := NewClient("test-key")
	client.SetHTTPClient(mockClient)

	_, err := client.Send(context.Background(), Message{
		From:    "broken",
		To:      []string{"jane@example.com"},
		Subject: "hello",
	})
	assert.Error(t, err)
}

func Test_Send_MissingFields_RejectedBeforeRequest(t *testing.T) {

	client := NewClient("test-key")

	_, err := client.Send(context.Background(), Message{Subject: "no recipient"})
	assert.Error(t, err)
}
