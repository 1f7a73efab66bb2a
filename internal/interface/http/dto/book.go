package dto

// AddBookRequest HTTP图书入库请求
// validator tag说明:
// - required: 必填字段
// - min/max: 数值范围校验
type AddBookRequest struct {
	ISBN        string `json:"isbn" binding:"required" example:"9787115428028"`
	Title       string `json:"title" binding:"required,max=200" example:"Go语言实战"`
	Author      string `json:"author" binding:"required,max=100" example:"威廉·肯尼迪"`
	Publisher   string `json:"publisher" binding:"required,max=100" example:"人民邮电出版社"`
	Stock       int    `json:"stock" binding:"min=0" example:"5"`
	Description string `json:"description" binding:"max=5000" example:"这是一本关于Go语言的实战书籍"`
}

// BookResponse HTTP图书响应
type BookResponse struct {
	ID          uint   `json:"id" example:"1"`
	ISBN        string `json:"isbn" example:"9787115428028"`
	Title       string `json:"title" example:"Go语言实战"`
	Author      string `json:"author" example:"威廉·肯尼迪"`
	Publisher   string `json:"publisher" example:"人民邮电出版社"`
	Stock       int    `json:"stock" example:"5"`
	Available   bool   `json:"available" example:"true"`
	Description string `json:"description" example:"这是一本关于Go语言的实战书籍"`
	CreatedAt   string `json:"created_at" example:"2026-01-15 10:30:00"`
}

// BookListItem HTTP图书列表项
// 列表查询时不返回Description字段(减少数据传输量)
type BookListItem struct {
	ID        uint   `json:"id" example:"1"`
	ISBN      string `json:"isbn" example:"9787115428028"`
	Title     string `json:"title" example:"Go语言实战"`
	Author    string `json:"author" example:"威廉·肯尼迪"`
	Publisher string `json:"publisher" example:"人民邮电出版社"`
	Stock     int    `json:"stock" example:"5"`
	Available bool   `json:"available" example:"true"`
	CreatedAt string `json:"created_at" example:"2026-01-15 10:30:00"`
}

// ListBooksRequest HTTP图书列表请求
type ListBooksRequest struct {
	Page          int    `form:"page" binding:"omitempty,min=1" example:"1"`
	PageSize      int    `form:"page_size" binding:"omitempty,min=1,max=100" example:"20"`
	Keyword       string `form:"keyword" binding:"omitempty,max=100" example:"Go"`
	OnlyAvailable bool   `form:"only_available" example:"true"`
}

// ListBooksResponse HTTP图书列表响应
type ListBooksResponse struct {
	List  []BookListItem `json:"list"`
	Total int64          `json:"total" example:"100"`
	Page  int            `json:"page" example:"1"`
	Size  int            `json:"size" example:"20"`
}
