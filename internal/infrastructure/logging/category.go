package logging

type Category string
type SubCategory string
type ExtraKey string

const (
	General         Category = "General"
	IO              Category = "IO"
	Internal        Category = "Internal"
	Mongo           Category = "Mongo"
	RabbitMQ        Category = "RabbitMQ"
	Validation      Category = "Validation"
	RequestResponse Category = "RequestResponse"
	Matchmaking     Category = "Matchmaking"
	Lifecycle       Category = "Lifecycle"
	Presence        Category = "Presence"
	Cleanup         Category = "Cleanup"
	AI              Category = "AI"
	Prometheus      Category = "Prometheus"
)

const (
	// General
	Startup         SubCategory = "Startup"
	Shutdown        SubCategory = "Shutdown"
	RateLimiting    SubCategory = "RateLimiting"
	ExternalService SubCategory = "ExternalService"

	// Matchmaking / Lifecycle
	FindOrCreate SubCategory = "FindOrCreate"
	Leave        SubCategory = "Leave"
	Reconcile    SubCategory = "Reconcile"
	RoomWatch    SubCategory = "RoomWatch"

	// Presence
	TypingSignal SubCategory = "TypingSignal"

	// Cleanup
	Reap SubCategory = "Reap"
)

const (
	AppName      ExtraKey = "AppName"
	LoggerName   ExtraKey = "Logger"
	ClientIp     ExtraKey = "ClientIp"
	HostIp       ExtraKey = "HostIp"
	Method       ExtraKey = "Method"
	StatusCode   ExtraKey = "StatusCode"
	BodySize     ExtraKey = "BodySize"
	Path         ExtraKey = "Path"
	Latency      ExtraKey = "Latency"
	RoomId       ExtraKey = "RoomId"
	ClientId     ExtraKey = "ClientId"
	ErrorMessage ExtraKey = "ErrorMessage"
)
