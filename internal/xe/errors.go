package xe

import "github.com/go-orz/orz"

var (
	ErrInvalidParams      = orz.NewError(10400, "参数无效")
	ErrQuoteNotFound      = orz.NewError(10404, "未找到金价数据")
	ErrPromptUpdateFailed = orz.NewError(10500, "提示词更新失败")
)
