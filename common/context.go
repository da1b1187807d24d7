package common

type ErContextKey string

const (
	ContextLogger         ErContextKey = "er.logger"
	ContextAction         ErContextKey = "er.action"
	ContextRequest        ErContextKey = "er.request"
	ContextRequestId      ErContextKey = "er.request_id"
	ContextResolverConfig ErContextKey = "er.resolver_config"
)
