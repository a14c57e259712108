package queue

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// SQSAPI is the subset of the SQS client the queue uses, kept as an
// interface so tests can inject a mock.
type SQSAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
	GetQueueAttributes(ctx context.Context, params *sqs.GetQueueAttributesInput, optFns ...func(*sqs.Options)) (*sqs.GetQueueAttributesOutput, error)
}

// SQS implements Queue on Amazon SQS, one queue URL per logical name.
// Dequeue long-polls via WaitTimeSeconds and deletes the message as soon as
// it is received; there is no visibility-timeout protocol here, matching
// the fire-and-forget queue contract.
type SQS struct {
	client    SQSAPI
	queueURLs map[string]string
}

func NewSQS(client SQSAPI, queueURLs map[string]string) *SQS {
	return &SQS{client: client, queueURLs: queueURLs}
}

func (s *SQS) url(name string) (string, error) {
	u, ok := s.queueURLs[name]
	if !ok {
		return "", fmt.Errorf("no queue URL configured for %s", name)
	}
	return u, nil
}

func (s *SQS) Enqueue(ctx context.Context, name string, body []byte) error {
	u, err := s.url(name)
	if err != nil {
		return err
	}
	msg := string(body)
	_, err = s.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    &u,
		MessageBody: &msg,
	})
	if err != nil {
		return fmt.Errorf("send message to %s: %w", name, err)
	}
	return nil
}

func (s *SQS) Dequeue(ctx context.Context, name string, wait time.Duration) ([]byte, error) {
	u, err := s.url(name)
	if err != nil {
		return nil, err
	}
	out, err := s.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            &u,
		MaxNumberOfMessages: 1,
		WaitTimeSeconds:     int32(wait / time.Second),
	})
	if err != nil {
		return nil, fmt.Errorf("receive message from %s: %w", name, err)
	}
	if len(out.Messages) == 0 {
		return nil, nil
	}
	msg := out.Messages[0]
	_, err = s.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      &u,
		ReceiptHandle: msg.ReceiptHandle,
	})
	if err != nil {
		return nil, fmt.Errorf("delete message from %s: %w", name, err)
	}
	if msg.Body == nil {
		return nil, nil
	}
	return []byte(*msg.Body), nil
}

func (s *SQS) Pending(ctx context.Context, name string) (int, error) {
	u, err := s.url(name)
	if err != nil {
		return 0, err
	}
	out, err := s.client.GetQueueAttributes(ctx, &sqs.GetQueueAttributesInput{
		QueueUrl:       &u,
		AttributeNames: []sqstypes.QueueAttributeName{sqstypes.QueueAttributeNameApproximateNumberOfMessages},
	})
	if err != nil {
		return 0, fmt.Errorf("get queue attributes for %s: %w", name, err)
	}
	n, err := strconv.Atoi(out.Attributes[string(sqstypes.QueueAttributeNameApproximateNumberOfMessages)])
	if err != nil {
		return 0, fmt.Errorf("parse pending count for %s: %w", name, err)
	}
	return n, nil
}
