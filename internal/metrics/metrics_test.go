package metrics

import (
	"context"
	"testing"
)

func TestRecordBeforeInit(t *testing.T) {
	// Must not panic while instruments are nil
	ctx := context.Background()
	RecordLogin(ctx, "success")
	RecordGuardRejection(ctx, "missing_token")
}

func TestInit(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if err := Init(); err != nil {
		t.Fatalf("second Init() error = %v", err)
	}

	ctx := context.Background()
	RecordRegistration(ctx, "USER")
	RecordLogin(ctx, "failure")
	RecordGuardRejection(ctx, "forbidden")
	RecordPostMutation(ctx, "create")
	RecordEventDropped(ctx, "post.created")
}
