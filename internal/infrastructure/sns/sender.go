package sns

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/go-otp-auth/internal/config"
	"github.com/go-otp-auth/internal/domain"
	smsinfra "github.com/go-otp-auth/internal/infrastructure/sms"
)

// Sender delivers SMS through AWS SNS. Selected with SMS_PROVIDER=sns
// as an alternative to the Aakash gateway.
type Sender struct {
	client *sns.Client
}

var _ smsinfra.Sender = (*Sender)(nil)

func NewSender(cfg *config.Config) (*Sender, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.SNSRegion),
	)
	if err != nil {
		return nil, err
	}
	return &Sender{client: sns.NewFromConfig(awsCfg)}, nil
}

func (s *Sender) Send(ctx context.Context, to, text string) error {
	_, err := s.client.Publish(ctx, &sns.PublishInput{
		PhoneNumber: &to,
		Message:     &text,
	})
	if err != nil {
		return fmt.Errorf("sns publish: %v: %w", err, domain.ErrGateway)
	}
	return nil
}
