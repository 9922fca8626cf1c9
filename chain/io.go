package chain

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
	"github.com/xhhuango/json"
	"go.uber.org/zap"

	"github.com/stratlab/optstrat/logging"
	"github.com/stratlab/optstrat/model"
	"github.com/stratlab/optstrat/opterr"
)

// knownColumns are the typed CSV columns; anything else lands in a
// row's ExtraFields.
var knownColumns = map[string]bool{
	"strike_price":       true,
	"call_bid":           true,
	"call_ask":           true,
	"put_bid":            true,
	"put_ask":            true,
	"implied_volatility": true,
	"delta_call":         true,
	"delta_put":          true,
	"gamma":              true,
	"volume":             true,
	"open_interest":      true,
}

// SaveCSV writes the chain rows under dir as
// <symbol>-<expiration>-<underlying>.csv.
func (c *OptionChain) SaveCSV(dir string) (string, error) {
	data, err := gocsv.MarshalBytes(&c.Options)
	if err != nil {
		return "", &opterr.ChainError{Symbol: c.Symbol, Reason: "csv marshal: " + err.Error()}
	}
	path := filepath.Join(dir, c.GetTitle()+".csv")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", &opterr.ChainError{Symbol: c.Symbol, Reason: "csv write: " + err.Error()}
	}
	logging.L().Debug("chain saved", zap.String("path", path), zap.Int("rows", len(c.Options)))
	return path, nil
}

// LoadCSV reads chain rows from a CSV file. The chain context (symbol,
// underlying, expiration, rates) is not part of the row format and
// must be supplied.
func LoadCSV(path, symbol string, underlying model.Positive, expiration string,
	riskFreeRate decimal.Decimal, dividendYield model.Positive) (*OptionChain, error) {
	c, err := New(symbol, underlying, expiration, riskFreeRate, dividendYield)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &opterr.ChainError{Symbol: symbol, Reason: "csv read: " + err.Error()}
	}

	var rows []*OptionData
	if err := gocsv.UnmarshalBytes(data, &rows); err != nil {
		return nil, &opterr.ChainError{Symbol: symbol, Reason: "csv parse: " + err.Error()}
	}
	if err := applyRawCells(data, rows); err != nil {
		return nil, &opterr.ChainError{Symbol: symbol, Reason: err.Error()}
	}
	if len(rows) == 0 {
		return nil, &opterr.ChainError{Symbol: symbol, Reason: "empty chain file"}
	}
	for _, row := range rows {
		if err := c.AddOption(row); err != nil {
			return nil, err
		}
	}
	logging.L().Debug("chain loaded", zap.String("path", path), zap.Int("rows", len(rows)))
	return c, nil
}

// applyRawCells re-reads the raw records to turn empty optional cells
// back into nils and to capture unknown columns into ExtraFields.
func applyRawCells(data []byte, rows []*OptionData) error {
	r := csv.NewReader(bytes.NewReader(data))
	records, err := r.ReadAll()
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}
	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		headers[i] = strings.ToLower(strings.TrimSpace(h))
	}
	for i, record := range records[1:] {
		if i >= len(rows) {
			break
		}
		row := rows[i]
		for j, cell := range record {
			if j >= len(headers) {
				break
			}
			name := headers[j]
			cell = strings.TrimSpace(cell)
			if !knownColumns[name] {
				if cell != "" {
					if row.ExtraFields == nil {
						row.ExtraFields = make(map[string]string)
					}
					row.ExtraFields[name] = cell
				}
				continue
			}
			if cell != "" {
				continue
			}
			switch name {
			case "call_bid":
				row.CallBid = nil
			case "call_ask":
				row.CallAsk = nil
			case "put_bid":
				row.PutBid = nil
			case "put_ask":
				row.PutAsk = nil
			case "delta_call":
				row.DeltaCall = nil
			case "delta_put":
				row.DeltaPut = nil
			case "gamma":
				row.Gamma = nil
			case "volume":
				row.Volume = nil
			}
		}
	}
	return nil
}

// SaveJSON writes the whole chain under dir as
// <symbol>-<expiration>-<underlying>.json.
func (c *OptionChain) SaveJSON(dir string) (string, error) {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return "", &opterr.ChainError{Symbol: c.Symbol, Reason: "json marshal: " + err.Error()}
	}
	path := filepath.Join(dir, c.GetTitle()+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", &opterr.ChainError{Symbol: c.Symbol, Reason: "json write: " + err.Error()}
	}
	return path, nil
}

// LoadJSON reads a chain saved by SaveJSON.
func LoadJSON(path string) (*OptionChain, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &opterr.ChainError{Reason: "json read: " + err.Error()}
	}
	var c OptionChain
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, &opterr.ChainError{Reason: "json parse: " + err.Error()}
	}
	exp, err := model.ParseExpiration(c.Expiration)
	if err != nil {
		return nil, &opterr.ChainError{Symbol: c.Symbol, Reason: "bad expiration: " + err.Error()}
	}
	c.ExpirationDate = exp
	for _, row := range c.Options {
		if err := row.validate(); err != nil {
			return nil, err
		}
	}
	return &c, nil
}
