package integration

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 教学说明：图书模块集成测试
//
// 测试场景覆盖：
// 1. 图书入库（需要管理员权限）
// 2. 图书目录查询（公开接口）
// 3. 分页、搜索、只看可借
// 4. 参数验证（ISBN格式、库存范围）

// TestBookAdd 测试图书入库功能
func TestBookAdd(t *testing.T) {
	adminToken := AdminToken(t)

	t.Run("正常入库", func(t *testing.T) {
		isbn := GenerateTestISBN()
		bookReq := map[string]interface{}{
			"isbn":        isbn,
			"title":       "《Go语言高级编程》",
			"author":      "柴树杉",
			"publisher":   "人民邮电出版社",
			"stock":       5,
			"description": "深入理解Go语言底层原理",
		}

		resp := PostJSON(t, BaseURL+"/admin/books", bookReq, adminToken)
		assert.Equal(t, 0, resp.Code, "入库应该成功")

		var data BookData
		err := json.Unmarshal(resp.Data, &data)
		require.NoError(t, err, "解析响应数据失败")

		assert.NotZero(t, data.ID, "图书ID应该大于0")
		assert.Equal(t, isbn, data.ISBN, "ISBN应该一致")
		assert.Equal(t, 5, data.Stock, "库存应该一致")
		assert.True(t, data.Available, "有库存应为可借")

		t.Logf("✓ 入库成功，图书ID: %d, ISBN: %s", data.ID, data.ISBN)
	})

	t.Run("零库存入库后不可借", func(t *testing.T) {
		bookReq := map[string]interface{}{
			"isbn":      GenerateTestISBN(),
			"title":     "《零库存入库测试》",
			"author":    "测试作者",
			"publisher": "测试出版社",
			"stock":     0,
		}

		resp := PostJSON(t, BaseURL+"/admin/books", bookReq, adminToken)
		require.Equal(t, 0, resp.Code, "零库存允许入库（表示暂时无货）: %s", resp.Message)

		var data BookData
		require.NoError(t, json.Unmarshal(resp.Data, &data))
		assert.False(t, data.Available, "零库存应为不可借")

		t.Logf("✓ 零库存入库成功，available=false")
	})

	t.Run("未登录不能入库", func(t *testing.T) {
		bookReq := map[string]interface{}{
			"isbn":      GenerateTestISBN(),
			"title":     "《测试图书》",
			"author":    "测试作者",
			"publisher": "测试出版社",
			"stock":     5,
		}

		resp := PostJSON(t, BaseURL+"/admin/books", bookReq, "") // 空token
		assert.NotEqual(t, 0, resp.Code, "未登录应该失败")

		t.Logf("✓ 未登录正确被拒绝: %s", resp.Message)
	})

	t.Run("ISBN重复应失败", func(t *testing.T) {
		isbn := GenerateTestISBN()

		resp1 := PostJSON(t, BaseURL+"/admin/books", map[string]interface{}{
			"isbn":      isbn,
			"title":     "《图书A》",
			"author":    "作者A",
			"publisher": "出版社A",
			"stock":     3,
		}, adminToken)
		require.Equal(t, 0, resp1.Code, "第一次入库应该成功")

		resp2 := PostJSON(t, BaseURL+"/admin/books", map[string]interface{}{
			"isbn":      isbn, // 相同ISBN
			"title":     "《图书B》",
			"author":    "作者B",
			"publisher": "出版社B",
			"stock":     3,
		}, adminToken)
		assert.NotEqual(t, 0, resp2.Code, "重复ISBN应该失败")

		t.Logf("✓ 重复ISBN正确返回错误: %s", resp2.Message)
	})

	t.Run("ISBN格式错误应失败", func(t *testing.T) {
		invalidISBNs := []string{
			"123",            // 太短
			"abc123def456",   // 包含字母
			"978711154742",   // 12位（少1位）
			"97871115474299", // 14位（多1位）
		}

		for _, invalidISBN := range invalidISBNs {
			resp := PostJSON(t, BaseURL+"/admin/books", map[string]interface{}{
				"isbn":      invalidISBN,
				"title":     "《ISBN格式测试》",
				"author":    "测试作者",
				"publisher": "测试出版社",
				"stock":     3,
			}, adminToken)

			assert.NotEqual(t, 0, resp.Code, "无效ISBN应该失败: %s", invalidISBN)

			t.Logf("✓ 无效ISBN '%s' 正确被拒绝: %s", invalidISBN, resp.Message)
		}
	})

	t.Run("负库存应失败", func(t *testing.T) {
		resp := PostJSON(t, BaseURL+"/admin/books", map[string]interface{}{
			"isbn":      GenerateTestISBN(),
			"title":     "《负库存测试》",
			"author":    "测试作者",
			"publisher": "测试出版社",
			"stock":     -1,
		}, adminToken)

		assert.NotEqual(t, 0, resp.Code, "负库存应该失败")

		t.Logf("✓ 负库存正确被拒绝: %s", resp.Message)
	})
}

// TestBookCatalog 测试图书目录查询功能
func TestBookCatalog(t *testing.T) {
	adminToken := AdminToken(t)

	// 准备测试数据：入库3本图书，其中1本无货
	AddTestBook(t, adminToken, "《目录测试甲》", 3)
	AddTestBook(t, adminToken, "《目录测试乙》", 1)
	resp := PostJSON(t, BaseURL+"/admin/books", map[string]interface{}{
		"isbn":      GenerateTestISBN(),
		"title":     "《目录测试丙》",
		"author":    "测试作者",
		"publisher": "测试出版社",
		"stock":     0,
	}, adminToken)
	require.Equal(t, 0, resp.Code)

	t.Run("公开接口无需认证", func(t *testing.T) {
		resp := GetJSON(t, BaseURL+"/books", "") // 空token
		assert.Equal(t, 0, resp.Code, "图书目录是公开接口")

		t.Logf("✓ 图书目录公开访问成功")
	})

	t.Run("关键词搜索", func(t *testing.T) {
		resp := GetJSON(t, BaseURL+"/books?keyword=目录测试", "")
		require.Equal(t, 0, resp.Code, "查询应该成功")

		var data BookListData
		err := json.Unmarshal(resp.Data, &data)
		require.NoError(t, err, "解析响应数据失败")

		assert.GreaterOrEqual(t, data.Total, int64(3), "至少找到刚入库的3本")

		t.Logf("✓ 关键词搜索成功，找到 %d 本", data.Total)
	})

	t.Run("只看可借", func(t *testing.T) {
		resp := GetJSON(t, BaseURL+"/books?keyword=目录测试&only_available=true", "")
		require.Equal(t, 0, resp.Code, "查询应该成功")

		var data BookListData
		err := json.Unmarshal(resp.Data, &data)
		require.NoError(t, err, "解析响应数据失败")

		for _, b := range data.List {
			assert.True(t, b.Available, "只看可借不应返回无货图书: %s", b.Title)
			assert.Greater(t, b.Stock, 0)
		}

		t.Logf("✓ 只看可借筛选正确，返回 %d 本", len(data.List))
	})

	t.Run("分页查询", func(t *testing.T) {
		url := fmt.Sprintf("%s/books?keyword=目录测试&page=1&page_size=2", BaseURL)
		resp := GetJSON(t, url, "")
		require.Equal(t, 0, resp.Code, "查询应该成功")

		var data BookListData
		err := json.Unmarshal(resp.Data, &data)
		require.NoError(t, err, "解析响应数据失败")

		assert.LessOrEqual(t, len(data.List), 2, "每页最多2条")

		t.Logf("✓ 分页查询成功，返回%d条", len(data.List))
	})
}
