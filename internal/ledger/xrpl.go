package ledger

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const accountTxLimit = 50

// dropsPerXRP converts native-currency drops into whole units.
var dropsPerXRP = decimal.New(1, 6)

// XRPLVerifier implements Verifier against an XRP Ledger JSON-RPC endpoint
// using the account_tx method.
type XRPLVerifier struct {
	endpoint string
	currency string
	client   *http.Client
}

// NewXRPLVerifier returns a verifier for the given RPC endpoint that
// accepts payments denominated in currency ("XRP" matches native drops).
func NewXRPLVerifier(endpoint, currency string) *XRPLVerifier {
	return &XRPLVerifier{
		endpoint: endpoint,
		currency: currency,
		client: &http.Client{
			Timeout: time.Second * 15,
		},
	}
}

// Verify polls account_tx at the configured cadence until a validated
// payment carrying req.Memo with amount >= req.MinAmount is observed, or
// req.Timeout elapses. Transient RPC errors are logged and retried on the
// next poll; only context cancellation is surfaced as an error.
func (v *XRPLVerifier) Verify(ctx context.Context, req VerifyRequest) (Result, error) {
	deadline := time.Now().Add(req.Timeout)

	for {
		result, found, err := v.findPayment(ctx, req)
		if err != nil {
			if ctx.Err() != nil {
				return Result{}, ctx.Err()
			}
			log.Printf("[ledger] poll failed, will retry: %v", err)
		}
		if found {
			return result, nil
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return Result{Status: StatusUnverified, Reason: ReasonTimeout}, nil
		}

		wait := req.PollInterval
		if wait > remaining {
			wait = remaining
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return Result{}, ctx.Err()
		case <-timer.C:
		}
	}
}

type accountTxRequest struct {
	Method string           `json:"method"`
	Params []accountTxParam `json:"params"`
}

type accountTxParam struct {
	Account        string `json:"account"`
	LedgerIndexMin int    `json:"ledger_index_min"`
	LedgerIndexMax int    `json:"ledger_index_max"`
	Limit          int    `json:"limit"`
	Forward        bool   `json:"forward"`
}

type accountTxResponse struct {
	Result struct {
		Status       string `json:"status"`
		Transactions []struct {
			Validated bool `json:"validated"`
			Tx        struct {
				TransactionType string          `json:"TransactionType"`
				Destination     string          `json:"Destination"`
				Amount          json.RawMessage `json:"Amount"`
				Hash            string          `json:"hash"`
				Memos           []txMemo        `json:"Memos"`
			} `json:"tx"`
			Meta struct {
				TransactionResult string          `json:"TransactionResult"`
				DeliveredAmount   json.RawMessage `json:"delivered_amount"`
			} `json:"meta"`
		} `json:"transactions"`
	} `json:"result"`
}

func (v *XRPLVerifier) findPayment(ctx context.Context, req VerifyRequest) (Result, bool, error) {
	payload := accountTxRequest{
		Method: "account_tx",
		Params: []accountTxParam{{
			Account:        req.Account,
			LedgerIndexMin: -1,
			LedgerIndexMax: -1,
			Limit:          accountTxLimit,
			Forward:        false,
		}},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return Result{}, false, fmt.Errorf("marshal account_tx request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, v.endpoint, bytes.NewReader(body))
	if err != nil {
		return Result{}, false, fmt.Errorf("build account_tx request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := v.client.Do(httpReq)
	if err != nil {
		return Result{}, false, fmt.Errorf("account_tx request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return Result{}, false, fmt.Errorf("account_tx request: unexpected status %d", resp.StatusCode)
	}

	var parsed accountTxResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return Result{}, false, fmt.Errorf("decode account_tx response: %w", err)
	}

	for _, entry := range parsed.Result.Transactions {
		if !entry.Validated || entry.Tx.TransactionType != "Payment" {
			continue
		}
		if entry.Tx.Destination != req.Account {
			continue
		}
		if entry.Meta.TransactionResult != "" && entry.Meta.TransactionResult != "tesSUCCESS" {
			continue
		}
		if !matchesMemo(entry.Tx.Memos, req.Memo) {
			continue
		}

		// Prefer the delivered amount; partial payments make tx.Amount a lie.
		raw := entry.Meta.DeliveredAmount
		if len(raw) == 0 {
			raw = entry.Tx.Amount
		}
		amount, ok := v.parseAmount(raw)
		if !ok || amount.LessThan(req.MinAmount) {
			continue
		}

		log.Printf("[ledger] matching payment found, tx=%s amount=%s", entry.Tx.Hash, amount)
		return Result{
			Status: StatusVerified,
			Amount: amount,
			TxHash: entry.Tx.Hash,
		}, true, nil
	}

	return Result{}, false, nil
}

// parseAmount handles both XRPL amount encodings: issued-currency objects
// with a currency code and string value, and native amounts given as a
// drops string.
func (v *XRPLVerifier) parseAmount(raw json.RawMessage) (decimal.Decimal, bool) {
	if len(raw) == 0 {
		return decimal.Decimal{}, false
	}

	var issued struct {
		Currency string `json:"currency"`
		Value    string `json:"value"`
	}
	if err := json.Unmarshal(raw, &issued); err == nil && issued.Currency != "" {
		if !strings.EqualFold(issued.Currency, v.currency) {
			return decimal.Decimal{}, false
		}
		amount, err := decimal.NewFromString(issued.Value)
		if err != nil {
			return decimal.Decimal{}, false
		}
		return amount, true
	}

	var drops string
	if err := json.Unmarshal(raw, &drops); err != nil {
		return decimal.Decimal{}, false
	}
	if !strings.EqualFold(v.currency, "XRP") {
		return decimal.Decimal{}, false
	}
	amount, err := decimal.NewFromString(drops)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return amount.Div(dropsPerXRP), true
}

type txMemo struct {
	Memo struct {
		MemoData string `json:"MemoData"`
	} `json:"Memo"`
}

func matchesMemo(memos []txMemo, want string) bool {
	for _, m := range memos {
		decoded, err := hex.DecodeString(m.Memo.MemoData)
		if err != nil {
			continue
		}
		if string(decoded) == want {
			return true
		}
	}
	return false
}
