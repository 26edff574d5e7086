package model

import (
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"server-staking-app/internal/pkg/generr"
)

const (
	// BalanceSchemaVersion is written on every save. Version 0 is the
	// unversioned mapping {"<cur_id>":{"amt":<number>,"sym":"..."}}.
	BalanceSchemaVersion = 1

	// DefaultCurrencyID is the placeholder slot created at registration.
	DefaultCurrencyID = "1"
)

type BalanceEntry struct {
	Amount decimal.Decimal `json:"amt"`
	Symbol string          `json:"sym"`
}

// Balance maps currency id to its balance entry.
type Balance map[string]BalanceEntry

type balanceDocument struct {
	Version    int                     `json:"v"`
	Currencies map[string]BalanceEntry `json:"currencies"`
}

type rawEntry struct {
	Amount *decimal.Decimal `json:"amt"`
	Symbol *string          `json:"sym"`
}

// NewBalance is the mapping every wallet starts with.
func NewBalance() Balance {
	return Balance{DefaultCurrencyID: {Amount: decimal.Zero, Symbol: ""}}
}

func (b Balance) Clone() Balance {
	c := make(Balance, len(b))
	for k, v := range b {
		c[k] = v
	}
	return c
}

// Apply adds delta to the currency entry, creating it with symbolIfNew when
// absent. The receiver is left untouched when the result would be negative.
func (b Balance) Apply(currencyID string, delta decimal.Decimal, symbolIfNew string) (BalanceEntry, error) {
	entry, ok := b[currencyID]
	if !ok {
		entry = BalanceEntry{Amount: decimal.Zero, Symbol: symbolIfNew}
	}
	next := entry.Amount.Add(delta)
	if next.IsNegative() {
		return entry, errors.Wrapf(generr.ErrInsufficientFunds, "currency %s has %s, delta %s",
			currencyID, entry.Amount.String(), delta.String())
	}
	entry.Amount = next
	b[currencyID] = entry
	return entry, nil
}

// DecodeBalance parses and validates a stored balance document. Any
// malformed input is reported as ErrDataCorruption.
func DecodeBalance(raw string) (Balance, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &top); err != nil {
		return nil, errors.Wrapf(generr.ErrDataCorruption, "balance is not a json object: %v", err)
	}
	if top == nil {
		return nil, errors.Wrap(generr.ErrDataCorruption, "balance is null")
	}

	entries := top
	if v, ok := top["v"]; ok {
		var version int
		if err := json.Unmarshal(v, &version); err != nil {
			return nil, errors.Wrapf(generr.ErrDataCorruption, "balance version %s", v)
		}
		if version != BalanceSchemaVersion {
			return nil, errors.Wrapf(generr.ErrDataCorruption, "unknown balance schema version %d", version)
		}
		entries = nil
		if err := json.Unmarshal(top["currencies"], &entries); err != nil || entries == nil {
			return nil, errors.Wrap(generr.ErrDataCorruption, "balance currencies missing")
		}
	}

	b := make(Balance, len(entries))
	for id, data := range entries {
		if id == "" {
			return nil, errors.Wrap(generr.ErrDataCorruption, "empty currency id")
		}
		var e rawEntry
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, errors.Wrapf(generr.ErrDataCorruption, "currency %s: %v", id, err)
		}
		if e.Amount == nil {
			return nil, errors.Wrapf(generr.ErrDataCorruption, "currency %s has no amount", id)
		}
		if e.Amount.IsNegative() {
			return nil, errors.Wrapf(generr.ErrDataCorruption, "currency %s has negative amount %s", id, e.Amount.String())
		}
		entry := BalanceEntry{Amount: *e.Amount}
		if e.Symbol != nil {
			entry.Symbol = *e.Symbol
		}
		b[id] = entry
	}
	return b, nil
}

// EncodeBalance always writes the current schema version.
func EncodeBalance(b Balance) (string, error) {
	doc := balanceDocument{Version: BalanceSchemaVersion, Currencies: b}
	if doc.Currencies == nil {
		doc.Currencies = Balance{}
	}
	bs, err := json.Marshal(doc)
	if err != nil {
		return "", errors.Wrap(err, "marshal balance")
	}
	return string(bs), nil
}
