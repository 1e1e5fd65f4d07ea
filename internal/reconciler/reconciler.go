package reconciler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dressly/storefront/internal/domain"
	apperrors "github.com/dressly/storefront/pkg/errors"
)

// mergedPhrase is the server-defined message fragment older cart deployments
// return when a submitted line was folded into an existing entry. Used only
// when the explicit was_merged field is absent from the response.
const mergedPhrase = "quantity was increased"

// CredentialProvider supplies the bearer credential for cart calls. The
// credential is read at call time, never cached across reconciliations.
type CredentialProvider interface {
	Token(ctx context.Context) (string, bool)
}

// HTTPDoer is the interface for executing HTTP requests.
type HTTPDoer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Notifier receives a cart-changed signal after a successful reconciliation.
type Notifier interface {
	CartChanged(ctx context.Context, userID, productID string, lineCount int)
}

// LineOutcome is the result of submitting a single selection line.
type LineOutcome struct {
	Key      string `json:"key"`
	Color    string `json:"color,omitempty"`
	Size     string `json:"size,omitempty"`
	Quantity int    `json:"quantity"`
	Merged   bool   `json:"merged"`
	Failed   bool   `json:"failed,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// Result reports the outcome of a full reconciliation.
type Result struct {
	Outcomes  []LineOutcome `json:"outcomes"`
	AnyMerged bool          `json:"any_merged"`
}

// Reconciler submits selection lines to the remote cart, one request per
// line, concurrently. It awaits every line before reporting; it never
// cancels in-flight siblings and never rolls back lines that succeeded.
type Reconciler struct {
	httpClient  HTTPDoer
	cartURL     string
	credentials CredentialProvider
	notifier    Notifier
	lineTimeout time.Duration
	logger      *slog.Logger
}

// New creates a cart reconciler.
func New(
	httpClient HTTPDoer,
	cartURL string,
	credentials CredentialProvider,
	notifier Notifier,
	lineTimeout time.Duration,
	logger *slog.Logger,
) *Reconciler {
	return &Reconciler{
		httpClient:  httpClient,
		cartURL:     cartURL,
		credentials: credentials,
		notifier:    notifier,
		lineTimeout: lineTimeout,
		logger:      logger,
	}
}

// Reconcile submits every line of the selection set to the remote cart.
//
// Preconditions are checked before any network call: a bearer credential
// must be available and the set must contain at least one line. The per-line
// requests run concurrently; the overall action succeeds only if every line
// succeeds. On partial failure the returned error names each failed line's
// reason, and the lines that did succeed stay in the remote cart.
func (r *Reconciler) Reconcile(ctx context.Context, userID, productID string, set *domain.SelectionSet) (*Result, error) {
	token, ok := r.credentials.Token(ctx)
	if !ok || token == "" {
		return nil, apperrors.AuthRequired()
	}
	if set == nil || len(set.Lines) == 0 {
		return nil, apperrors.EmptySelection()
	}

	// Submitted lines must run to completion even if the caller goes away,
	// so each request gets its own timeout off a detached context.
	detached := context.WithoutCancel(ctx)

	outcomes := make([]LineOutcome, len(set.Lines))
	var wg sync.WaitGroup
	for i, line := range set.Lines {
		wg.Add(1)
		go func(i int, line domain.SelectionLine) {
			defer wg.Done()
			outcomes[i] = r.submitLine(detached, token, productID, line)
		}(i, line)
	}
	wg.Wait()

	result := &Result{Outcomes: outcomes}
	var failures []string
	for _, o := range outcomes {
		if o.Failed {
			failures = append(failures, fmt.Sprintf("%s: %s", o.Key, o.Reason))
			continue
		}
		if o.Merged {
			result.AnyMerged = true
		}
		linesReconciled.WithLabelValues(outcomeLabel(o)).Inc()
	}

	if len(failures) > 0 {
		for range failures {
			linesReconciled.WithLabelValues("failed").Inc()
		}
		r.logger.WarnContext(ctx, "cart reconciliation failed",
			slog.String("product_id", productID),
			slog.Int("failed_lines", len(failures)),
			slog.Int("total_lines", len(outcomes)),
		)
		return result, &AggregateError{Failures: failures}
	}

	r.logger.InfoContext(ctx, "cart reconciliation complete",
		slog.String("product_id", productID),
		slog.Int("lines", len(outcomes)),
		slog.Bool("any_merged", result.AnyMerged),
	)

	if r.notifier != nil {
		r.notifier.CartChanged(ctx, userID, productID, len(outcomes))
	}

	return result, nil
}

// cartInsertRequest is the body of one cart-insert call.
type cartInsertRequest struct {
	ProductID string `json:"product_id"`
	Color     string `json:"color,omitempty"`
	Size      string `json:"size,omitempty"`
	Quantity  int    `json:"quantity"`
}

// cartInsertResponse carries the merge outcome. Current cart deployments set
// was_merged explicitly; older ones only hint at it in the message text.
type cartInsertResponse struct {
	Success   bool   `json:"success"`
	WasMerged *bool  `json:"was_merged,omitempty"`
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
}

func (r *Reconciler) submitLine(ctx context.Context, token, productID string, line domain.SelectionLine) LineOutcome {
	outcome := LineOutcome{
		Key:      line.Key,
		Color:    line.Color,
		Size:     line.Size,
		Quantity: line.Quantity,
	}

	if r.lineTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.lineTimeout)
		defer cancel()
	}

	body, err := json.Marshal(cartInsertRequest{
		ProductID: productID,
		Color:     line.Color,
		Size:      line.Size,
		Quantity:  line.Quantity,
	})
	if err != nil {
		outcome.Failed = true
		outcome.Reason = fmt.Sprintf("marshal cart request: %v", err)
		return outcome
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.cartURL+"/api/v1/cart/items", bytes.NewReader(body))
	if err != nil {
		outcome.Failed = true
		outcome.Reason = fmt.Sprintf("create cart request: %v", err)
		return outcome
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := r.httpClient.Do(ctx, req)
	if err != nil {
		outcome.Failed = true
		outcome.Reason = fmt.Sprintf("call cart service: %v", err)
		return outcome
	}
	defer resp.Body.Close()

	var insertResp cartInsertResponse
	if err := json.NewDecoder(resp.Body).Decode(&insertResp); err != nil {
		outcome.Failed = true
		outcome.Reason = fmt.Sprintf("decode cart response (status %d): %v", resp.StatusCode, err)
		return outcome
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !insertResp.Success {
		outcome.Failed = true
		outcome.Reason = insertResp.Error
		if outcome.Reason == "" {
			outcome.Reason = fmt.Sprintf("cart service returned status %d", resp.StatusCode)
		}
		return outcome
	}

	if insertResp.WasMerged != nil {
		outcome.Merged = *insertResp.WasMerged
	} else {
		outcome.Merged = strings.Contains(insertResp.Message, mergedPhrase)
	}
	return outcome
}

func outcomeLabel(o LineOutcome) string {
	if o.Merged {
		return "merged"
	}
	return "new"
}

// AggregateError reports every failed line of a reconciliation.
type AggregateError struct {
	Failures []string
}

func (e *AggregateError) Error() string {
	return fmt.Sprintf("cart reconciliation failed for %d line(s): %s",
		len(e.Failures), strings.Join(e.Failures, "; "))
}
