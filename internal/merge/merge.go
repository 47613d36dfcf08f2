// Package merge joins the users and transactions record sets on an
// automatically detected shared key, producing a unified set with missing
// columns back-filled.
package merge

import (
	"fmt"
	"strings"

	"github.com/Fallou236/blackbox-cleaner/internal/common"
	"github.com/Fallou236/blackbox-cleaner/internal/model"
)

// joinAliases is the ordered list of known join key names; the first alias
// present in both sets wins.
var joinAliases = []string{"user_id", "customer_id", "client_id", "userId", "customerId"}

// txIDAliases are transaction identifier names normalized to "ID".
var txIDAliases = []string{"tx_id", "TXN_ID", "txn_id", "transaction_id", "TXN", "txid"}

// IDColumn is the canonical identifier column name of the output.
const IDColumn = "ID"

// Result reports how the merge was performed.
type Result struct {
	// JoinKey is the detected shared key; empty in degraded mode.
	JoinKey string
	// Degraded is set when no shared key was found and the merge fell
	// back to concatenation with user fields left empty. Callers must
	// surface this since the output semantics change silently otherwise.
	Degraded bool
	// IDColumn is the column the exporter should force to position 0.
	IDColumn string
	// SynthesizedIDs counts rows that received a generated identifier.
	SynthesizedIDs int
}

// Merge performs a left-outer-style join driven by the transactions:
// every transaction yields exactly one output row; users with no
// transactions are not emitted. It fails only when both inputs are empty.
//
// When the same field name exists on both sides, the transaction value
// wins; the user value is kept under a "_user" suffix.
func Merge(users, transactions model.RecordSet) (model.RecordSet, Result, error) {
	if users.Empty() && transactions.Empty() {
		return model.RecordSet{}, Result{}, common.ErrEmptyInputs
	}

	users = renameFields(users, map[string]string{"tx_id": IDColumn})
	transactions = renameTxIDs(transactions)

	res := Result{}
	res.JoinKey = detectJoinKey(users, transactions)
	res.Degraded = res.JoinKey == ""

	byKey := indexUsers(users, res.JoinKey)

	merged := model.RecordSet{}
	for _, tx := range transactions.Records {
		rec := tx.Clone()
		if res.JoinKey != "" {
			if user, ok := byKey[keyText(tx[res.JoinKey])]; ok {
				for _, f := range users.Fields {
					v, present := user[f]
					if !present || f == res.JoinKey {
						continue
					}
					if _, taken := rec[f]; taken {
						rec[f+"_user"] = v
						continue
					}
					rec[f] = v
				}
			}
		}
		merged.Records = append(merged.Records, rec)
	}

	merged.Fields = unionFields(transactions, users, res.JoinKey)

	res.SynthesizedIDs = ensureIDs(&merged, res.JoinKey)
	res.IDColumn = pickIDColumn(merged, res.JoinKey)

	// Column union: every output record carries the same column set.
	for _, rec := range merged.Records {
		for _, f := range merged.Fields {
			if _, ok := rec[f]; !ok {
				rec[f] = nil
			}
		}
	}

	return merged, res, nil
}

// detectJoinKey intersects candidate identifier-like names across both
// sets, in alias order. When no alias matches it falls back to the first
// field both sets share, excluding record-identifier names, so two exports
// that only share e.g. a "region" column still join on something real.
func detectJoinKey(users, transactions model.RecordSet) string {
	for _, alias := range joinAliases {
		if users.HasField(alias) && transactions.HasField(alias) {
			return alias
		}
	}
	for _, f := range transactions.Fields {
		lower := strings.ToLower(f)
		if lower == "id" || lower == "tx_id" || lower == "txn_id" {
			continue
		}
		if users.HasField(f) {
			return f
		}
	}
	return ""
}

// indexUsers maps normalized join key text to the first user record with
// that key. First match wins so that duplicate user exports cannot
// multiply transaction rows.
func indexUsers(users model.RecordSet, key string) map[string]model.Record {
	byKey := make(map[string]model.Record)
	if key == "" {
		return byKey
	}
	for _, u := range users.Records {
		v, ok := u[key]
		if !ok || model.IsNull(v) {
			continue
		}
		k := keyText(v)
		if _, seen := byKey[k]; !seen {
			byKey[k] = u
		}
	}
	return byKey
}

// keyText normalizes a join key value for comparison.
func keyText(v model.Value) string {
	return strings.TrimSpace(model.Text(v))
}

func renameTxIDs(set model.RecordSet) model.RecordSet {
	renames := make(map[string]string)
	for _, alias := range txIDAliases {
		if set.HasField(alias) {
			renames[alias] = IDColumn
			break
		}
	}
	return renameFields(set, renames)
}

func renameFields(set model.RecordSet, renames map[string]string) model.RecordSet {
	applicable := false
	for from := range renames {
		if set.HasField(from) {
			applicable = true
		}
	}
	if !applicable {
		return set
	}

	out := model.RecordSet{Fields: make([]string, 0, len(set.Fields))}
	for _, f := range set.Fields {
		if to, ok := renames[f]; ok {
			f = to
		}
		if !out.HasField(f) {
			out.Fields = append(out.Fields, f)
		}
	}
	for _, rec := range set.Records {
		renamed := make(model.Record, len(rec))
		for k, v := range rec {
			if to, ok := renames[k]; ok {
				k = to
			}
			renamed[k] = v
		}
		out.Records = append(out.Records, renamed)
	}
	return out
}

// unionFields lays out the merged columns: transaction fields first in
// their source order, then user-only fields, then conflict-suffixed
// leftovers.
func unionFields(transactions, users model.RecordSet, joinKey string) []string {
	out := model.RecordSet{}
	for _, f := range transactions.Fields {
		if !out.HasField(f) {
			out.Fields = append(out.Fields, f)
		}
	}
	for _, f := range users.Fields {
		if f == joinKey {
			continue
		}
		name := f
		if out.HasField(f) {
			name = f + "_user"
		}
		if !out.HasField(name) {
			out.Fields = append(out.Fields, name)
		}
	}
	return out.Fields
}

// ensureIDs guarantees every output row has an identifier. Rows with a
// null value in an existing ID column get a generated one; when there is
// neither an ID column nor a join key to identify rows by, a TXN-prefixed
// sequence column is created. Returns the number of synthesized values.
func ensureIDs(set *model.RecordSet, joinKey string) int {
	if set.HasField(IDColumn) {
		count := 0
		for i, rec := range set.Records {
			if model.IsNull(rec[IDColumn]) {
				rec[IDColumn] = fmt.Sprintf("TXN%06d", i+1)
				count++
			}
		}
		return count
	}
	if joinKey != "" {
		return 0
	}

	set.Fields = append(set.Fields, IDColumn)
	for i, rec := range set.Records {
		rec[IDColumn] = fmt.Sprintf("TXN%06d", i+1)
	}
	return set.Len()
}

// pickIDColumn chooses the identifier column the exporter forces first:
// a real transaction ID when the input had one, otherwise the join key,
// otherwise the synthesized ID column.
func pickIDColumn(set model.RecordSet, joinKey string) string {
	if set.HasField(IDColumn) {
		return IDColumn
	}
	return joinKey
}
