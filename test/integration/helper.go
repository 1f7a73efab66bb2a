package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// 教学说明：测试辅助工具
// 这个文件包含集成测试的通用辅助函数，遵循DRY原则（Don't Repeat Yourself）
// 将重复的代码（HTTP请求、JSON解析、账号准备）封装成可复用的函数
//
// 运行前置条件：
// 1. 服务已在localhost:8080启动（go run ./cmd/api）
// 2. 数据库中已初始化一个管理员账号（注册接口只开放读者角色）：
//    INSERT INTO users(email, password, name, role, created_at, updated_at)
//    VALUES('admin@library.test', '<bcrypt of Admin1234>', '管理员', 'admin', NOW(), NOW());
//    可通过环境变量 LIBRARY_TEST_ADMIN_EMAIL / LIBRARY_TEST_ADMIN_PASSWORD 覆盖

const (
	// BaseURL API基础URL
	BaseURL = "http://localhost:8080/api/v1"
	// Timeout HTTP请求超时时间
	Timeout = 10 * time.Second
)

// 业务错误码（与pkg/errors保持一致）
const (
	CodeOutOfStock          = 40001
	CodeInvalidTransition   = 40002
	CodeDuplicateActiveLoan = 40003
	CodeLoanNotFound        = 40403
	CodeInvalidParams       = 40900
)

// Response 统一响应结构
type Response struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// RegisterData 注册响应数据
type RegisterData struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// LoginData 登录响应数据
type LoginData struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// BookData 图书响应数据
type BookData struct {
	ID        uint   `json:"id"`
	ISBN      string `json:"isbn"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	Stock     int    `json:"stock"`
	Available bool   `json:"available"`
}

// BookListData 图书列表响应数据
type BookListData struct {
	List  []BookData `json:"list"`
	Total int64      `json:"total"`
}

// LoanData 借阅单响应数据（申请/流转共用）
type LoanData struct {
	LoanID     uint   `json:"loan_id"`
	Label      string `json:"label"`
	BorrowedAt string `json:"borrowed_at"`
	DueAt      string `json:"due_at"`
}

// ReturnData 归还响应数据（携带罚金）
type ReturnData struct {
	LoanID      uint   `json:"loan_id"`
	Label       string `json:"label"`
	DaysOverdue int    `json:"days_overdue"`
	Fine        int64  `json:"fine"`
	Reason      string `json:"reason"`
}

// LoanViewData 借阅单列表项（书架/管理端列表共用）
type LoanViewData struct {
	LoanID     uint   `json:"loan_id"`
	BorrowerID uint   `json:"borrower_id"`
	Label      string `json:"label"`
	Overdue    bool   `json:"overdue"`
	Fine       int64  `json:"fine"`
	Reason     string `json:"reason"`
	Lines      []struct {
		BookID uint   `json:"book_id"`
		Title  string `json:"title"`
	} `json:"lines"`
}

// PageData 分页响应数据
type PageData struct {
	List  []LoanViewData `json:"list"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
}

// StatisticsData 统计响应数据
type StatisticsData struct {
	Counts map[string]int64 `json:"counts"`
	Total  int64            `json:"total"`
}

// PostJSON 发送POST请求并解析JSON响应
//
// 教学说明：
// - 使用*testing.T参数，可以在失败时立即终止测试
// - 使用require包进行断言，失败会立即停止（不继续执行）
// - 返回*Response而非error，简化调用方代码
func PostJSON(t *testing.T, url string, data interface{}, token string) *Response {
	jsonData, err := json.Marshal(data)
	require.NoError(t, err, "JSON序列化失败")

	req, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonData))
	require.NoError(t, err, "创建HTTP请求失败")

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: Timeout}
	resp, err := client.Do(req)
	require.NoError(t, err, "发送HTTP请求失败")
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "读取响应体失败")

	var result Response
	err = json.Unmarshal(body, &result)
	require.NoError(t, err, "解析JSON响应失败: %s", string(body))

	return &result
}

// GetJSON 发送GET请求并解析JSON响应
func GetJSON(t *testing.T, url string, token string) *Response {
	req, err := http.NewRequest("GET", url, nil)
	require.NoError(t, err, "创建HTTP请求失败")

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: Timeout}
	resp, err := client.Do(req)
	require.NoError(t, err, "发送HTTP请求失败")
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "读取响应体失败")

	var result Response
	err = json.Unmarshal(body, &result)
	require.NoError(t, err, "解析JSON响应失败: %s", string(body))

	return &result
}

// GenerateTestEmail 生成唯一的测试邮箱
// 使用纳秒时间戳确保邮箱唯一性，避免测试重复运行时邮箱冲突
func GenerateTestEmail(prefix string) string {
	return fmt.Sprintf("%s_%d@test.com", prefix, time.Now().UnixNano())
}

// GenerateTestISBN 生成唯一的测试ISBN
// ISBN-13格式：978 + 10位数字，使用时间戳的后10位确保唯一性
func GenerateTestISBN() string {
	timestamp := time.Now().UnixNano()
	return fmt.Sprintf("978%010d", timestamp%10000000000)
}

// RegisterTestMember 注册测试读者并返回Token
//
// 教学说明：
// 这是一个"高阶"辅助函数，封装了注册+登录的完整流程
// 简化了测试代码，让测试更关注业务逻辑而非基础设施
func RegisterTestMember(t *testing.T, name string) (email string, token string) {
	email = GenerateTestEmail(name)
	registerReq := map[string]string{
		"email":    email,
		"password": "Test1234",
		"name":     name,
	}

	registerResp := PostJSON(t, BaseURL+"/auth/register", registerReq, "")
	require.Equal(t, 0, registerResp.Code, "注册失败: %s", registerResp.Message)

	loginReq := map[string]string{
		"email":    email,
		"password": "Test1234",
	}

	loginResp := PostJSON(t, BaseURL+"/auth/login", loginReq, "")
	require.Equal(t, 0, loginResp.Code, "登录失败: %s", loginResp.Message)

	var loginData LoginData
	err := json.Unmarshal(loginResp.Data, &loginData)
	require.NoError(t, err, "解析登录响应失败")

	return email, loginData.AccessToken
}

// AdminToken 登录预置的管理员账号并返回Token
//
// 教学说明：
// 注册接口固定开读者角色，管理员账号由运维初始化,
// 集成测试通过环境变量指向这个预置账号
func AdminToken(t *testing.T) string {
	email := os.Getenv("LIBRARY_TEST_ADMIN_EMAIL")
	if email == "" {
		email = "admin@library.test"
	}
	password := os.Getenv("LIBRARY_TEST_ADMIN_PASSWORD")
	if password == "" {
		password = "Admin1234"
	}

	loginReq := map[string]string{
		"email":    email,
		"password": password,
	}

	loginResp := PostJSON(t, BaseURL+"/auth/login", loginReq, "")
	require.Equal(t, 0, loginResp.Code,
		"管理员登录失败(需要预置管理员账号,见helper.go头部说明): %s", loginResp.Message)

	var loginData LoginData
	err := json.Unmarshal(loginResp.Data, &loginData)
	require.NoError(t, err, "解析登录响应失败")

	return loginData.AccessToken
}

// AddTestBook 入库测试图书并返回图书ID
func AddTestBook(t *testing.T, adminToken string, title string, stock int) uint {
	bookReq := map[string]interface{}{
		"isbn":        GenerateTestISBN(),
		"title":       title,
		"author":      "测试作者",
		"publisher":   "测试出版社",
		"stock":       stock,
		"description": "集成测试用图书",
	}

	bookResp := PostJSON(t, BaseURL+"/admin/books", bookReq, adminToken)
	require.Equal(t, 0, bookResp.Code, "图书入库失败: %s", bookResp.Message)

	var bookData BookData
	err := json.Unmarshal(bookResp.Data, &bookData)
	require.NoError(t, err, "解析图书响应失败")

	return bookData.ID
}

// GetBookStock 从图书目录查询当前库存
// 库存守恒断言用：每次审批后目录里的stock/available必须与预期一致
func GetBookStock(t *testing.T, title string, bookID uint) (stock int, available bool) {
	resp := GetJSON(t, BaseURL+"/books?keyword="+title+"&page_size=100", "")
	require.Equal(t, 0, resp.Code, "查询图书列表失败: %s", resp.Message)

	var listData BookListData
	err := json.Unmarshal(resp.Data, &listData)
	require.NoError(t, err, "解析图书列表失败")

	for _, b := range listData.List {
		if b.ID == bookID {
			return b.Stock, b.Available
		}
	}

	t.Fatalf("图书目录中找不到图书ID=%d", bookID)
	return 0, false
}

// RequestBorrow 提交借阅申请并返回借阅单ID
func RequestBorrow(t *testing.T, token string, bookIDs []uint) uint {
	resp := PostJSON(t, BaseURL+"/loans", map[string]interface{}{
		"book_ids": bookIDs,
	}, token)
	require.Equal(t, 0, resp.Code, "借阅申请失败: %s", resp.Message)

	var loanData LoanData
	err := json.Unmarshal(resp.Data, &loanData)
	require.NoError(t, err, "解析借阅响应失败")
	require.Equal(t, "waiting for approval", loanData.Label)

	return loanData.LoanID
}

// ApproveBorrow 管理员审批借阅
func ApproveBorrow(t *testing.T, adminToken string, loanID uint) *Response {
	return PostJSON(t, fmt.Sprintf("%s/admin/loans/%d/approve", BaseURL, loanID), nil, adminToken)
}

// RequestReturn 读者申请归还
func RequestReturn(t *testing.T, token string, loanID uint) *Response {
	return PostJSON(t, fmt.Sprintf("%s/loans/%d/return", BaseURL, loanID), nil, token)
}
