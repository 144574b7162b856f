package wizard_test

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"design-order-backend/internal/draft"
	"design-order-backend/internal/models"
	"design-order-backend/internal/wizard"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type fakeCheckout struct {
	mu      sync.Mutex
	calls   []models.OrderDraft
	err     error
	started chan struct{}
	release chan struct{}
}

func (f *fakeCheckout) Start(_ context.Context, draftID string, d models.OrderDraft) (*models.CheckoutResponse, error) {
	f.mu.Lock()
	f.calls = append(f.calls, d)
	err := f.err
	started, release := f.started, f.release
	f.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if release != nil {
		<-release
	}
	if err != nil {
		return nil, err
	}
	return &models.CheckoutResponse{SessionID: "cs_" + draftID, URL: "https://pay.test/" + draftID}, nil
}

func (f *fakeCheckout) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func newRegistry(checkout wizard.Checkout, persister *draft.Persister) *wizard.Registry {
	return wizard.NewRegistry(persister, checkout, quietLogger(), time.Hour)
}

func openSession(t *testing.T, checkout wizard.Checkout) *wizard.Session {
	t.Helper()
	s, err := newRegistry(checkout, nil).Open(context.Background(), "")
	require.NoError(t, err)
	return s
}

// walkToSummary submits steps 1-4 with the end-to-end scenario's answers.
func walkToSummary(t *testing.T, s *wizard.Session) {
	t.Helper()
	ctx := context.Background()
	steps := []models.StepRequest{
		{ProjectType: models.ProjectTypeLogo},
		{ContentText: "fifteen chars.."},
		{},
		{IsExpress: true, IncludeSourceFiles: false, Email: "a@b.com"},
	}
	for i, req := range steps {
		resp, err := s.Submit(ctx, i+1, req)
		require.NoError(t, err, "step %d", i+1)
		require.Nil(t, resp)
	}
}
