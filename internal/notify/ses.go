package notify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/ses"
	"github.com/aws/aws-sdk-go/service/ses/sesiface"

	"github.com/gst-aqn42/TP1/internal/catalog"
)

// SESConfig selects the region, the sender address and, for local
// emulators, the endpoint.
type SESConfig struct {
	Region   string
	Endpoint string
	From     string
}

// SES sends notices as plain-text email through Amazon SES.
type SES struct {
	client sesiface.SESAPI
	from   string
}

// NewSES opens an AWS session for cfg.
func NewSES(cfg SESConfig) (*SES, error) {
	awsCfg := &aws.Config{Region: aws.String(cfg.Region)}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
	}
	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}
	return newSES(ses.New(sess), cfg.From), nil
}

func newSES(client sesiface.SESAPI, from string) *SES {
	return &SES{client: client, from: from}
}

// NotifyNewArticle sends the notice to to.
func (s *SES) NotifyNewArticle(ctx context.Context, to, author string, a catalog.Article) error {
	subject, body := Compose(author, a)
	_, err := s.client.SendEmailWithContext(ctx, &ses.SendEmailInput{
		Source:      aws.String(s.from),
		Destination: &ses.Destination{ToAddresses: []*string{aws.String(to)}},
		Message: &ses.Message{
			Subject: &ses.Content{Charset: aws.String("UTF-8"), Data: aws.String(subject)},
			Body: &ses.Body{
				Text: &ses.Content{Charset: aws.String("UTF-8"), Data: aws.String(body)},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("send notice to %s: %w", to, err)
	}
	return nil
}
