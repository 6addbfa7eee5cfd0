package handler

type ContextKey string

var (
	MemberInfoCtx ContextKey = "memberInfo"
)
