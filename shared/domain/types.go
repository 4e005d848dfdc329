package domain

type (
	Email     = string
	Password  = string
	MsgId     = string
	MimeType  = string
	Note      = string
	PartType  string
	Role      string
)
