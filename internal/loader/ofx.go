package loader

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/aclindsa/ofxgo"

	"github.com/Fallou236/blackbox-cleaner/internal/common"
	"github.com/Fallou236/blackbox-cleaner/internal/model"
)

// ofxFieldOrder is the stable column layout for transactions recovered
// from OFX statements, aligned with the field names the JSON exports use.
var ofxFieldOrder = []string{"tx_id", "user_id", "amount", "tx_date", "type", "description"}

// LoadTransactions loads a transactions file in whatever format it is in:
// OFX/QFX bank exports are parsed with ofxgo, everything else goes through
// the flexible JSON loader.
func LoadTransactions(ctx context.Context, path string) (model.RecordSet, int, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ofx", ".qfx":
		return loadOFX(ctx, path)
	default:
		return Load(ctx, path)
	}
}

func loadOFX(ctx context.Context, path string) (model.RecordSet, int, error) {
	if err := ctx.Err(); err != nil {
		return model.RecordSet{}, 0, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return model.RecordSet{}, 0, fmt.Errorf("reading %s: %w", path, err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(preprocessOFX(string(data))))
	if err != nil {
		return model.RecordSet{}, 0, fmt.Errorf("%s: %w", path, common.ErrNoRecords)
	}

	var set model.RecordSet
	skipped := 0

	for _, msg := range resp.Bank {
		stmt, ok := msg.(*ofxgo.StatementResponse)
		if !ok {
			skipped++
			continue
		}
		appendStatement(&set, stmt.BankTranList, string(stmt.BankAcctFrom.AcctID))
	}
	for _, msg := range resp.CreditCard {
		stmt, ok := msg.(*ofxgo.CCStatementResponse)
		if !ok {
			skipped++
			continue
		}
		appendStatement(&set, stmt.BankTranList, string(stmt.CCAcctFrom.AcctID))
	}

	if set.Empty() {
		return model.RecordSet{}, skipped, fmt.Errorf("%s: %w", path, common.ErrNoRecords)
	}

	slog.Info("Parsed OFX file", "path", path, "transactions", set.Len())
	return set, skipped, nil
}

// preprocessOFX fixes common formatting issues in OFX files: leading
// whitespace before the header, mixed-case SEVERITY values, and SGML-style
// opening tags missing their closing bracket.
func preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")

	severityRegex := regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)

	tagFixRegex := regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
	content = tagFixRegex.ReplaceAllString(content, "$1>")

	return content
}

func appendStatement(set *model.RecordSet, list *ofxgo.TransactionList, accountID string) {
	if list == nil {
		return
	}
	for _, tx := range list.Transactions {
		amount, _ := tx.TrnAmt.Float64()
		rec := model.Record{
			"tx_id":       string(tx.FiTID),
			"user_id":     accountID,
			"amount":      json.Number(fmt.Sprintf("%.2f", amount)),
			"tx_date":     tx.DtPosted.Time.UTC().Format("2006-01-02 15:04:05"),
			"type":        fmt.Sprintf("%v", tx.TrnType),
			"description": strings.TrimSpace(string(tx.Name)),
		}
		if tx.Memo != "" && rec["description"] == "" {
			rec["description"] = strings.TrimSpace(string(tx.Memo))
		}
		set.Add(rec, ofxFieldOrder)
	}
}
