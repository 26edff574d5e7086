package generr

type mErr struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

var (
	ParseParam  = &mErr{400, "invalid parameters"}
	ServerError = &mErr{500, "internal server error"}
)

var (
	UserNotFound   = &mErr{701, "user not found"}
	WalletNotFound = &mErr{702, "user have no wallet"}
	InvalidPlan    = &mErr{703, "invalid plan"}
	NotFound       = &mErr{704, "record not found"}

	Conflict       = &mErr{801, "concurrent update, please retry"}
	DataCorruption = &mErr{983, "invalid balance format in storage"}

	BalanceNotEnough = &mErr{901, "insufficient balance in wallet"}
)
