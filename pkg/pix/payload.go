package pix

import (
	"strings"
	"unicode"

	"github.com/nats-io/nuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Top level tags of a merchant presented payload.
const (
	TagPayloadFormat     = "00"
	TagPointOfInitiation = "01"
	TagMerchantAccount   = "26"
	TagMerchantCategory  = "52"
	TagCurrency          = "53"
	TagAmount            = "54"
	TagCountry           = "58"
	TagMerchantName      = "59"
	TagMerchantCity      = "60"
	TagAdditionalData    = "62"
	TagChecksum          = "63"
)

// Tags nested inside 26 (merchant account) and 62 (additional data).
const (
	TagGUI           = "00"
	TagPaymentKey    = "01"
	TagDescription   = "02"
	TagTransactionID = "05"
)

const (
	PayloadFormatIndicator      = "01"
	PointOfInitiationOneTime    = "12"
	GUI                         = "br.gov.bcb.pix"
	DefaultMerchantCategoryCode = "0000"
	CurrencyBRL                 = "986"
	CountryBR                   = "BR"

	MaxDescriptionLength  = 25
	MaxMerchantNameLength = 25
	MaxMerchantCityLength = 15
	MaxTxIDLength         = 25

	// unidentified transaction, accepted by every PSP
	emptyTxID      = "***"
	checksumPrefix = TagChecksum + "04"
)

// Params carries everything that ends up in the payload. TxID is part of the
// input so that the same params always render the same payload.
type Params struct {
	Amount               decimal.Decimal
	MerchantName         string
	MerchantCity         string
	PaymentKey           string
	Description          string
	TxID                 string
	MerchantCategoryCode string
}

// NewTxID returns a fresh transaction id for tag 62/05.
// nuid combines a random prefix with an atomic sequence, so ids generated in
// the same instant never collide.
func NewTxID() string {
	return nuid.Next()
}

// EncodeMerchantAccountInfo renders template 26: GUI, payment key and the
// optional description (cut to 25 characters), in that order.
func EncodeMerchantAccountInfo(paymentKey, description string) (string, error) {
	key := strings.TrimSpace(paymentKey)
	if !isPrintableASCII(key) {
		return "", &EncodingError{Tag: TagPaymentKey, Reason: "payment key must be printable ASCII"}
	}

	segments := []Field{
		{Tag: TagGUI, Value: GUI},
		{Tag: TagPaymentKey, Value: key},
	}
	if desc := truncate(sanitize(description), MaxDescriptionLength); desc != "" {
		segments = append(segments, Field{Tag: TagDescription, Value: desc})
	}

	inner, err := encodeAll(segments)
	if err != nil {
		return "", err
	}
	return EncodeField(TagMerchantAccount, inner)
}

// BuildPayload assembles the full payload and appends its checksum.
func BuildPayload(p Params) (string, error) {
	merchantAccount, err := EncodeMerchantAccountInfo(p.PaymentKey, p.Description)
	if err != nil {
		return "", err
	}

	amount, err := formatAmount(p.Amount)
	if err != nil {
		return "", err
	}

	txid, err := normalizeTxID(p.TxID)
	if err != nil {
		return "", err
	}
	additional, err := EncodeField(TagTransactionID, txid)
	if err != nil {
		return "", err
	}

	mcc := p.MerchantCategoryCode
	if mcc == "" {
		mcc = DefaultMerchantCategoryCode
	}
	if len(mcc) != 4 || !isDigits(mcc) {
		return "", &EncodingError{Tag: TagMerchantCategory, Reason: "merchant category code must be four digits"}
	}

	head, err := encodeAll([]Field{
		{Tag: TagPayloadFormat, Value: PayloadFormatIndicator},
		{Tag: TagPointOfInitiation, Value: PointOfInitiationOneTime},
	})
	if err != nil {
		return "", err
	}
	tail, err := encodeAll([]Field{
		{Tag: TagMerchantCategory, Value: mcc},
		{Tag: TagCurrency, Value: CurrencyBRL},
		{Tag: TagAmount, Value: amount},
		{Tag: TagCountry, Value: CountryBR},
		{Tag: TagMerchantName, Value: truncate(sanitize(p.MerchantName), MaxMerchantNameLength)},
		{Tag: TagMerchantCity, Value: truncate(sanitize(p.MerchantCity), MaxMerchantCityLength)},
		{Tag: TagAdditionalData, Value: additional},
	})
	if err != nil {
		return "", err
	}

	body := head + merchantAccount + tail + checksumPrefix
	return body + ComputeChecksum(body), nil
}

func encodeAll(fields []Field) (string, error) {
	var sb strings.Builder
	for _, f := range fields {
		enc, err := EncodeField(f.Tag, f.Value)
		if err != nil {
			return "", err
		}
		sb.WriteString(enc)
	}
	return sb.String(), nil
}

func formatAmount(amount decimal.Decimal) (string, error) {
	if amount.Sign() <= 0 {
		return "", &EncodingError{Tag: TagAmount, Reason: "amount must be positive"}
	}
	if !amount.Equal(amount.Round(2)) {
		return "", &EncodingError{Tag: TagAmount, Reason: "amount has more than two fractional digits"}
	}
	return amount.StringFixed(2), nil
}

func normalizeTxID(txid string) (string, error) {
	txid = strings.TrimSpace(txid)
	if txid == "" || txid == emptyTxID {
		return emptyTxID, nil
	}
	if len(txid) > MaxTxIDLength {
		return "", &EncodingError{Tag: TagTransactionID, Reason: "transaction id longer than 25 characters"}
	}
	for _, r := range txid {
		if !(r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z') {
			return "", &EncodingError{Tag: TagTransactionID, Reason: "transaction id must be alphanumeric"}
		}
	}
	return txid, nil
}

// sanitize strips diacritics and anything outside printable ASCII so that
// byte length and character length agree.
func sanitize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	var sb strings.Builder
	for _, r := range out {
		if r >= 0x20 && r < 0x7F {
			sb.WriteRune(r)
		}
	}
	return strings.TrimSpace(sb.String())
}

func truncate(s string, max int) string {
	if len(s) > max {
		return strings.TrimSpace(s[:max])
	}
	return s
}

func isPrintableASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 0x20 || s[i] >= 0x7F {
			return false
		}
	}
	return true
}
