package vnpay

import (
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/vietstay/service-booking/internal/config"
	paymentDomain "github.com/vietstay/service-booking/internal/domain/payment"
	"github.com/vietstay/service-booking/internal/pkg/domain"
)

// Outbound parameter names per the gateway's wire contract.
const (
	fieldVersion    = "vnp_Version"
	fieldCommand    = "vnp_Command"
	fieldTmnCode    = "vnp_TmnCode"
	fieldAmount     = "vnp_Amount"
	fieldCurrCode   = "vnp_CurrCode"
	fieldTxnRef     = "vnp_TxnRef"
	fieldOrderInfo  = "vnp_OrderInfo"
	fieldOrderType  = "vnp_OrderType"
	fieldLocale     = "vnp_Locale"
	fieldReturnURL  = "vnp_ReturnUrl"
	fieldIPAddr     = "vnp_IpAddr"
	fieldCreateDate = "vnp_CreateDate"
	fieldExpireDate = "vnp_ExpireDate"

	fieldResponseCode      = "vnp_ResponseCode"
	fieldTransactionStatus = "vnp_TransactionStatus"
	fieldTransactionNo     = "vnp_TransactionNo"
	fieldBankCode          = "vnp_BankCode"
	fieldPayDate           = "vnp_PayDate"
)

const (
	apiVersion = "2.1.0"
	commandPay = "pay"
	orderType  = "other"

	// ResponseCodeSuccess is the provider outcome code for a successful payment.
	ResponseCodeSuccess = "00"
	// ResponseCodeUserCancelled is the provider outcome code for a payment
	// abandoned by the user.
	ResponseCodeUserCancelled = "24"
	// TxnStatusSuccess is the secondary transaction-status success value.
	TxnStatusSuccess = "00"

	// AmountMultiplier scales domain amounts to the gateway's representation
	// with 2 implied decimal digits, even though VND has none.
	AmountMultiplier = 100
)

// IPN acknowledgement codes. This vocabulary is dictated by the provider.
const (
	RspCodeSuccess         = "00"
	RspCodeInvalidChecksum = "97"
	RspCodeUnknownError    = "99"
)

// Ack is the fixed two-field response body for the notification endpoint.
type Ack struct {
	RspCode string `json:"RspCode"`
	Message string `json:"Message"`
}

// timestampLayout and gatewayZone: the provider requires yyyyMMddHHmmss in
// UTC+7 regardless of server timezone.
const timestampLayout = "20060102150405"

var gatewayZone = time.FixedZone("ICT", 7*60*60)

// Callback is a signature-verified inbound callback, shared by the browser
// return and the server-to-server notification.
type Callback struct {
	TxnRef            string
	Amount            int64
	ResponseCode      string
	TransactionStatus string
	TransactionNo     string
	BankCode          string
	PayDate           time.Time
	Raw               map[string]string
}

// IsSuccess reports a successful outcome: the designated success code, with
// the secondary transaction-status field also success when present.
func (c *Callback) IsSuccess() bool {
	if c.ResponseCode != ResponseCodeSuccess {
		return false
	}
	return c.TransactionStatus == "" || c.TransactionStatus == TxnStatusSuccess
}

// IsUserCancelled reports that the user abandoned the payment at the gateway.
func (c *Callback) IsUserCancelled() bool {
	return c.ResponseCode == ResponseCodeUserCancelled
}

// Gateway builds outbound signed redirect URLs and parses inbound callbacks.
type Gateway struct {
	cfg    config.VNPayConfig
	logger *zap.Logger
	now    func() time.Time
}

// NewGateway creates a Gateway for the configured merchant.
func NewGateway(cfg config.VNPayConfig, logger *zap.Logger) *Gateway {
	return &Gateway{cfg: cfg, logger: logger, now: time.Now}
}

// BuildRedirectURL constructs the signed payment URL for a pending payment
// and returns the outbound parameter set for the audit trail.
func (g *Gateway) BuildRedirectURL(p *paymentDomain.Payment, orderInfo, clientIP string) (string, map[string]string, error) {
	now := g.now().In(gatewayZone)

	params := map[string]string{
		fieldVersion:    apiVersion,
		fieldCommand:    commandPay,
		fieldTmnCode:    g.cfg.TmnCode,
		fieldAmount:     strconv.FormatInt(p.Amount()*AmountMultiplier, 10),
		fieldCurrCode:   p.Currency(),
		fieldTxnRef:     p.TxnRef(),
		fieldOrderInfo:  SanitizeOrderInfo(orderInfo),
		fieldOrderType:  orderType,
		fieldLocale:     "vn",
		fieldReturnURL:  g.cfg.ReturnURL,
		fieldIPAddr:     clientIP,
		fieldCreateDate: now.Format(timestampLayout),
		fieldExpireDate: now.Add(g.cfg.ExpireIn).Format(timestampLayout),
	}

	hash := Sign(params, g.cfg.HashSecret)
	redirect := g.cfg.PayURL + "?" + Canonicalize(params) + "&" + FieldSecureHash + "=" + hash

	g.logger.Info("built payment redirect",
		zap.String("txn_ref", p.TxnRef()),
		zap.Int64("amount", p.Amount()),
	)
	return redirect, params, nil
}

// ParseCallback verifies and decodes an inbound callback query. Both the
// browser-return and the notification path go through here; nothing is
// mutated before the signature check passes.
func (g *Gateway) ParseCallback(query url.Values) (*Callback, error) {
	params := make(map[string]string, len(query))
	for k := range query {
		params[k] = query.Get(k)
	}

	ok, want := Verify(params, g.cfg.HashSecret)
	if !ok {
		g.logger.Warn("callback signature mismatch",
			zap.String("txn_ref", params[fieldTxnRef]),
			zap.String("got", params[FieldSecureHash]),
			zap.String("want", want),
		)
		return nil, domain.NewInvalidSignatureError("callback signature verification failed")
	}

	cb := &Callback{
		TxnRef:            params[fieldTxnRef],
		ResponseCode:      params[fieldResponseCode],
		TransactionStatus: params[fieldTransactionStatus],
		TransactionNo:     params[fieldTransactionNo],
		BankCode:          params[fieldBankCode],
		Raw:               params,
	}

	if raw := params[fieldAmount]; raw != "" {
		amount, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, domain.NewValidationError("malformed callback amount")
		}
		cb.Amount = amount
	}

	if raw := params[fieldPayDate]; raw != "" {
		if t, err := time.ParseInLocation(timestampLayout, raw, gatewayZone); err == nil {
			cb.PayDate = t
		}
	}
	if cb.PayDate.IsZero() {
		cb.PayDate = g.now()
	}

	return cb, nil
}
