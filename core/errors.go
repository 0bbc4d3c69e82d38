package core

import "errors"

// DomainError 是领域层的统一错误类型。
//
// 设计原则：
//   - 所有领域层错误都使用此类型
//   - 提供错误代码（Code）和消息（Message）
//   - 失败必须携带可记录的原因，禁止静默吞掉
//
// 错误分级（对应降级策略）：
//   - DATA_UNAVAILABLE：无历史数据，本地用确定性兜底消化，不上抛
//   - MODEL_UNAVAILABLE：模型未训练/不可加载/数据不足，软失败，调用方回退启发式
//   - TRANSFORM_ERROR：单个候选的特征构造失败，按候选跳过，不致整个请求失败
//   - PERSISTENCE：底层存储读写失败，作为请求级失败携带细节上抛
type DomainError struct {
	Code    string // 错误代码（如 "NOT_FOUND", "MODEL_UNAVAILABLE"）
	Message string // 错误消息
	Module  string // 模块名称（如 "store", "model"）
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError 创建新的领域错误。
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// GetDomainError 获取 DomainError，如果不是则返回 nil。
func GetDomainError(err error) *DomainError {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return nil
}

// 错误代码常量
const (
	ErrorCodeNotFound         = "NOT_FOUND"         // 资源不存在
	ErrorCodeDataUnavailable  = "DATA_UNAVAILABLE"  // 无历史数据
	ErrorCodeModelUnavailable = "MODEL_UNAVAILABLE" // 模型不可用
	ErrorCodeTransform        = "TRANSFORM_ERROR"   // 特征构造失败
	ErrorCodePersistence      = "PERSISTENCE"       // 存储读写失败
	ErrorCodeInvalidInput     = "INVALID_INPUT"     // 输入无效
)

// 模块名称常量
const (
	ModuleStore     = "store"
	ModuleMenu      = "menu"
	ModuleFeature   = "feature"
	ModuleModel     = "model"
	ModuleRecommend = "recommend"
)

// IsNotFound 检查错误是否为 NOT_FOUND。
func IsNotFound(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeNotFound
	}
	return false
}

// IsModelUnavailable 检查错误是否为 MODEL_UNAVAILABLE（软失败，应回退启发式）。
func IsModelUnavailable(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeModelUnavailable
	}
	return false
}

// IsTransformError 检查错误是否为 TRANSFORM_ERROR（按候选跳过）。
func IsTransformError(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeTransform
	}
	return false
}
