package services

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// OpsNotifier surfaces archival failures that exhausted their retries to
// operators: a publish on an SNS topic and an SES email. Either channel is
// disabled when its env var is unset.
type OpsNotifier struct {
	sns      *sns.Client
	ses      *ses.Client
	topicArn string
	email    string
	sender   string
}

func NewOpsNotifier() (*OpsNotifier, error) {
	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = "ap-south-1"
	}
	cfg, err := awsconfig.LoadDefaultConfig(context.TODO(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return &OpsNotifier{
		sns:      sns.NewFromConfig(cfg),
		ses:      ses.NewFromConfig(cfg),
		topicArn: os.Getenv("OPS_ALERT_TOPIC_ARN"),
		email:    os.Getenv("OPS_ALERT_EMAIL"),
		sender:   os.Getenv("SES_EMAIL"),
	}, nil
}

// ArchivalFailed reports an unrecoverable archival failure. The live
// aggregate is still intact on disk, so the message tells the operator
// which (user, day) needs manual recovery.
func (n *OpsNotifier) ArchivalFailed(userID uint, dateKey string, cause error) {
	subject := fmt.Sprintf("Intake archival failed for user %d", userID)
	body := fmt.Sprintf(
		"Daily intake archival for user %d (day %s) exhausted its retries.\n\nLast error: %v\n\nThe live aggregate is preserved; trigger POST /temp-intake/reset once storage recovers.",
		userID, dateKey, cause,
	)

	if n.topicArn != "" {
		_, err := n.sns.Publish(context.TODO(), &sns.PublishInput{
			TopicArn: aws.String(n.topicArn),
			Subject:  aws.String(subject),
			Message:  aws.String(body),
		})
		if err != nil {
			log.Printf("ops notifier: SNS publish failed: %v", err)
		}
	}

	if n.email != "" && n.sender != "" {
		_, err := n.ses.SendEmail(context.TODO(), &ses.SendEmailInput{
			Destination: &sestypes.Destination{ToAddresses: []string{n.email}},
			Message: &sestypes.Message{
				Subject: &sestypes.Content{Data: aws.String(subject)},
				Body:    &sestypes.Body{Text: &sestypes.Content{Data: aws.String(body)}},
			},
			Source: aws.String(n.sender),
		})
		if err != nil {
			log.Printf("ops notifier: SES send failed: %v", err)
		}
	}
}
