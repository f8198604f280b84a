package dto

// Response 统一响应封装
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// PageResult 分页响应封装
// Pages/HasNext/HasPrev 由 NewPageResult 统一推导，调用方不要手算。
type PageResult struct {
	List    interface{} `json:"list"`
	Total   int64       `json:"total"`
	Page    int         `json:"page"`
	Size    int         `json:"size"`
	Pages   int64       `json:"pages"`
	HasNext bool        `json:"has_next"`
	HasPrev bool        `json:"has_prev"`
}

func NewPageResult(list interface{}, total int64, page, size int) *PageResult {
	var pages int64
	if size > 0 {
		pages = (total + int64(size) - 1) / int64(size)
	}
	return &PageResult{
		List:    list,
		Total:   total,
		Page:    page,
		Size:    size,
		Pages:   pages,
		HasNext: int64(page) < pages,
		HasPrev: page > 1 && total > 0,
	}
}
