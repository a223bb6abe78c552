package adapter

// Adapter shapes questions for one backend and normalizes its replies.
type Adapter interface {
	Dialect() Dialect
	BuildRequest(question, endpointURL string) (Request, error)
	NormalizeReply(status int, body []byte) (Answer, error)
}

type InsightAdapter struct {
	dialect Dialect
}

func NewInsightAdapter(d Dialect) *InsightAdapter {
	return &InsightAdapter{dialect: d}
}

func (a *InsightAdapter) Dialect() Dialect {
	return a.dialect
}

func (a *InsightAdapter) BuildRequest(question, endpointURL string) (Request, error) {
	return Shape(question, EndpointConfig{URL: endpointURL, Dialect: a.dialect})
}

func (a *InsightAdapter) NormalizeReply(status int, body []byte) (Answer, error) {
	return Normalize(status, body)
}
