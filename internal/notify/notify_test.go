package notify

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/ses"
	"github.com/aws/aws-sdk-go/service/ses/sesiface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gst-aqn42/TP1/internal/catalog"
)

var article = catalog.Article{
	ID:      "a1",
	Title:   "Flaky Tests in CI",
	Authors: catalog.AuthorsFromNames([]string{"Ana Silva", "Bruno Lima"}),
	Year:    2024,
}

func TestCompose(t *testing.T) {
	tests := []struct {
		name     string
		article  catalog.Article
		contains []string
	}{
		{"with abstract", func() catalog.Article { a := article; a.Abstract = "We study flakiness."; return a }(),
			[]string{"Título: Flaky Tests in CI", "Autores: Ana Silva, Bruno Lima", "Ano: 2024", "Resumo: We study flakiness."}},
		{"without abstract", article, []string{"Resumo: Sem resumo"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subject, body := Compose("Ana Silva", tt.article)
			assert.Equal(t, "Novo artigo publicado de Ana Silva", subject)
			for _, want := range tt.contains {
				assert.Contains(t, body, want)
			}
		})
	}
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := NewLog(slog.New(slog.NewTextHandler(&buf, nil)))

	require.NoError(t, n.NotifyNewArticle(context.Background(), "reader@example.com", "Ana Silva", article))
	assert.Contains(t, buf.String(), "to=reader@example.com")
	assert.Contains(t, buf.String(), "article_id=a1")
}

type mockSESAPI struct {
	sesiface.SESAPI
	mock.Mock
}

func (m *mockSESAPI) SendEmailWithContext(ctx context.Context, input *ses.SendEmailInput, opts ...request.Option) (*ses.SendEmailOutput, error) {
	args := m.Called(ctx, input)
	return &ses.SendEmailOutput{}, args.Error(0)
}

func TestSESNotifier(t *testing.T) {
	api := &mockSESAPI{}
	api.On("SendEmailWithContext", mock.Anything, mock.MatchedBy(func(in *ses.SendEmailInput) bool {
		return *in.Source == "library@example.com" &&
			len(in.Destination.ToAddresses) == 1 && *in.Destination.ToAddresses[0] == "reader@example.com" &&
			*in.Message.Subject.Data == "Novo artigo publicado de Ana Silva"
	})).Return(nil).Once()
	api.On("SendEmailWithContext", mock.Anything, mock.Anything).Return(errors.New("throttled")).Once()

	n := newSES(api, "library@example.com")
	require.NoError(t, n.NotifyNewArticle(context.Background(), "reader@example.com", "Ana Silva", article))

	err := n.NotifyNewArticle(context.Background(), "other@example.com", "Ana Silva", article)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "other@example.com")
	api.AssertExpectations(t)
}
