package service

import (
	"errors"
)

const (
	BadRequest          = 400
	Unauthorized        = 401
	Forbidden           = 403
	NotFound            = 404
	Conflict            = 409
	InternalServerError = 500
)

var (
	ErrParamInvalid         = errors.New("参数错误")
	ErrUserNotFound         = errors.New("用户不存在")
	ErrUserExist            = errors.New("用户已存在")
	ErrPasswordIncorrect    = errors.New("密码错误")
	ErrListingNotFound      = errors.New("商品不存在")
	ErrImageRequired        = errors.New("实物商品至少需要一张图片")
	ErrConditionRequired    = errors.New("实物商品需要填写成色")
	ErrGeoInvalid           = errors.New("交易地点坐标无效")
	ErrPriceInvalid         = errors.New("价格不能为负数")
	ErrActionInvalid        = errors.New("无效的审核操作")
	ErrReasonRequired       = errors.New("驳回时必须填写原因")
	ErrReviewFinished       = errors.New("该商品已完成审核")
	ErrAlreadyPending       = errors.New("该商品已处于待审核状态")
	ErrConversationNotFound = errors.New("会话不存在")
	ErrNotParticipant       = errors.New("不是该会话的成员")
	ErrMessageEmpty         = errors.New("消息内容与图片不能同时为空")
	ErrSelfConversation     = errors.New("不能与自己发起会话")
	ErrFileNotSupported     = errors.New("不支持的文件类型")
	ForbiddenError          = errors.New("无权操作该资源")
	UnauthorizedError       = errors.New("权限不足")
	UnExpectedError         = errors.New("系统异常，请稍后重试")
)

var ErrorMap = map[error]int{
	ErrParamInvalid:         BadRequest,
	ErrUserNotFound:         NotFound,
	ErrUserExist:            BadRequest,
	ErrPasswordIncorrect:    Unauthorized,
	ErrListingNotFound:      NotFound,
	ErrImageRequired:        BadRequest,
	ErrConditionRequired:    BadRequest,
	ErrGeoInvalid:           BadRequest,
	ErrPriceInvalid:         BadRequest,
	ErrActionInvalid:        BadRequest,
	ErrReasonRequired:       BadRequest,
	ErrReviewFinished:       Conflict,
	ErrAlreadyPending:       Conflict,
	ErrConversationNotFound: NotFound,
	ErrNotParticipant:       Forbidden,
	ErrMessageEmpty:         BadRequest,
	ErrSelfConversation:     BadRequest,
	ErrFileNotSupported:     BadRequest,
	ForbiddenError:          Forbidden,
	UnauthorizedError:       Unauthorized,
	UnExpectedError:         InternalServerError,
}
