package loader

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Sample OFX data for testing.
const sampleBankOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>USD
<BANKACCTFROM>
<BANKID>123456789
<ACCTID>1234567890
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240115120000[0:GMT]
<TRNAMT>-25.50
<FITID>2024011501
<NAME>COFFEE SHOP #1234
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240120120000[0:GMT]
<TRNAMT>-125.00
<FITID>2024012001
<NAME>GROCERY MARKET
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>1000.00
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`

func TestLoadTransactionsOFX(t *testing.T) {
	path := writeFile(t, "statement.ofx", sampleBankOFX)

	set, skipped, err := LoadTransactions(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 0, skipped)
	require.Equal(t, 2, set.Len())

	assert.Equal(t, []string{"tx_id", "user_id", "amount", "tx_date", "type", "description"}, set.Fields)

	first := set.Records[0]
	assert.Equal(t, "2024011501", first["tx_id"])
	assert.Equal(t, "1234567890", first["user_id"])
	assert.Equal(t, "COFFEE SHOP #1234", first["description"])
	assert.Equal(t, "DEBIT", first["type"])
}

func TestLoadTransactionsFallsBackToJSON(t *testing.T) {
	path := writeFile(t, "tx.json", `[{"tx_id": "t1", "amount": 5}]`)

	set, _, err := LoadTransactions(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 1, set.Len())
}

func TestLoadOFXGarbageFails(t *testing.T) {
	path := writeFile(t, "broken.ofx", "this is not an OFX file")

	_, _, err := LoadTransactions(context.Background(), path)
	require.Error(t, err)
}
