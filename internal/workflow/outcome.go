package workflow

// Violation 业务校验违规项
type Violation struct {
	LineID  string `json:"line_id,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// Outcome 状态迁移尝试的结果。业务规则失败以数据形式返回，不作为 error 传播
type Outcome struct {
	OK         bool        `json:"ok"`
	Violations []Violation `json:"violations,omitempty"`
}

// Passed 成功结果
func Passed() Outcome {
	return Outcome{OK: true}
}

// Blocked 失败结果
func Blocked(violations ...Violation) Outcome {
	return Outcome{OK: false, Violations: violations}
}

// BlockedMsg 单条消息的失败结果
func BlockedMsg(message string) Outcome {
	return Outcome{OK: false, Violations: []Violation{{Message: message}}}
}
