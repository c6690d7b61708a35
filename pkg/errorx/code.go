package errorx

type Code int

var Unknown = Error{Code: 100000, Message: "Request failed"}

const (
	// Common codes
	BadRequest       Code = 100001
	BadResponse      Code = 100002
	PermissionDenied Code = 100003
	NotFound         Code = 100004
	Unauthenticated  Code = 100005
	AlreadyExists    Code = 100006
	Internal         Code = 100007
	Unavailable      Code = 100008
	NotImplemented   Code = 100009
	TooManyRequests  Code = 100010

	// Account codes
	Banned              Code = 200001
	InsufficientBalance Code = 200002

	// Gate codes, the action can be retried after the wait described in the
	// message.
	CooldownActive    Code = 300001
	DailyLimitReached Code = 300002
	AlreadyClaimed    Code = 300003
	DwellTooShort     Code = 300004
	InProgress        Code = 300005
)
