package integration

import (
	"encoding/json"
	"fmt"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 教学说明：读者侧借阅流程集成测试
//
// 借阅生命周期是本项目的核心，读者侧覆盖以下技术点：
// 1. 借阅申请（申请阶段只建单不占库存）
// 2. 防重复借阅（同一本书只允许一条未完结借阅）
// 3. 归还申请与罚金计算
// 4. 书架查询与标签筛选

// TestBorrowRequest 测试借阅申请
func TestBorrowRequest(t *testing.T) {
	adminToken := AdminToken(t)
	_, memberToken := RegisterTestMember(t, "borrow_requester")

	t.Run("正常申请借阅", func(t *testing.T) {
		bookID := AddTestBook(t, adminToken, "《借阅申请测试》", 3)

		resp := PostJSON(t, BaseURL+"/loans", map[string]interface{}{
			"book_ids": []uint{bookID},
		}, memberToken)
		require.Equal(t, 0, resp.Code, "申请借阅应该成功: %s", resp.Message)

		var data LoanData
		err := json.Unmarshal(resp.Data, &data)
		require.NoError(t, err, "解析响应数据失败")

		assert.NotZero(t, data.LoanID, "借阅单ID应该大于0")
		assert.Equal(t, "waiting for approval", data.Label, "新申请应为待审批标签")

		// 到期时间 = 申请时间 + 14天
		borrowedAt, err := time.Parse("2006-01-02 15:04:05", data.BorrowedAt)
		require.NoError(t, err)
		dueAt, err := time.Parse("2006-01-02 15:04:05", data.DueAt)
		require.NoError(t, err)
		assert.Equal(t, 14*24*time.Hour, dueAt.Sub(borrowedAt), "借期应为14天")

		// 申请阶段不占库存
		stock, available := GetBookStock(t, "《借阅申请测试》", bookID)
		assert.Equal(t, 3, stock, "申请阶段不应扣减库存")
		assert.True(t, available)

		t.Logf("✓ 借阅申请成功，借阅单ID: %d, 到期时间: %s", data.LoanID, data.DueAt)
	})

	t.Run("未登录不能申请", func(t *testing.T) {
		bookID := AddTestBook(t, adminToken, "《未登录测试》", 3)

		resp := PostJSON(t, BaseURL+"/loans", map[string]interface{}{
			"book_ids": []uint{bookID},
		}, "") // 空token

		assert.NotEqual(t, 0, resp.Code, "未登录应该失败")

		t.Logf("✓ 未登录正确被拒绝: %s", resp.Message)
	})

	t.Run("图书不存在应失败", func(t *testing.T) {
		resp := PostJSON(t, BaseURL+"/loans", map[string]interface{}{
			"book_ids": []uint{999999999},
		}, memberToken)

		assert.NotEqual(t, 0, resp.Code, "图书不存在应该失败")

		t.Logf("✓ 图书不存在正确返回错误: %s", resp.Message)
	})

	t.Run("空图书列表应失败", func(t *testing.T) {
		resp := PostJSON(t, BaseURL+"/loans", map[string]interface{}{
			"book_ids": []uint{},
		}, memberToken)

		assert.NotEqual(t, 0, resp.Code, "空列表应该失败")

		t.Logf("✓ 空图书列表正确返回错误: %s", resp.Message)
	})

	t.Run("同一次申请图书重复应失败", func(t *testing.T) {
		bookID := AddTestBook(t, adminToken, "《重复明细测试》", 5)

		resp := PostJSON(t, BaseURL+"/loans", map[string]interface{}{
			"book_ids": []uint{bookID, bookID},
		}, memberToken)

		assert.Equal(t, CodeInvalidParams, resp.Code, "同一本书借两次按参数错误拒绝")

		t.Logf("✓ 重复明细正确返回错误: %s", resp.Message)
	})

	t.Run("无货图书申请阶段即被拒", func(t *testing.T) {
		bookID := AddTestBook(t, adminToken, "《零库存测试》", 0)

		resp := PostJSON(t, BaseURL+"/loans", map[string]interface{}{
			"book_ids": []uint{bookID},
		}, memberToken)

		assert.Equal(t, CodeOutOfStock, resp.Code, "无货时不应创建注定无法审批的申请")

		t.Logf("✓ 零库存图书申请正确被拒: %s", resp.Message)
	})

	t.Run("多本图书一单借阅", func(t *testing.T) {
		bookID1 := AddTestBook(t, adminToken, "《多本借阅A》", 2)
		bookID2 := AddTestBook(t, adminToken, "《多本借阅B》", 2)

		resp := PostJSON(t, BaseURL+"/loans", map[string]interface{}{
			"book_ids": []uint{bookID1, bookID2},
		}, memberToken)
		require.Equal(t, 0, resp.Code, "多本借阅应该成功: %s", resp.Message)

		t.Logf("✓ 一单借两本成功")
	})
}

// TestDuplicateActiveLoan 测试防重复借阅
// 业务规则：读者对同一本书存在未完结借阅（待审批/借出中/待归还审批）时，
// 不能再次申请
func TestDuplicateActiveLoan(t *testing.T) {
	adminToken := AdminToken(t)
	_, memberToken := RegisterTestMember(t, "dup_loan_tester")

	bookID := AddTestBook(t, adminToken, "《防重复借阅测试》", 5)

	t.Run("待审批时再次申请被拒", func(t *testing.T) {
		RequestBorrow(t, memberToken, []uint{bookID})

		resp := PostJSON(t, BaseURL+"/loans", map[string]interface{}{
			"book_ids": []uint{bookID},
		}, memberToken)

		assert.Equal(t, CodeDuplicateActiveLoan, resp.Code, "存在未完结借阅应被拒")

		t.Logf("✓ 重复借阅正确被拒: %s", resp.Message)
	})

	t.Run("其他读者不受影响", func(t *testing.T) {
		_, otherToken := RegisterTestMember(t, "dup_loan_other")

		resp := PostJSON(t, BaseURL+"/loans", map[string]interface{}{
			"book_ids": []uint{bookID},
		}, otherToken)

		assert.Equal(t, 0, resp.Code, "防重复借阅按读者隔离: %s", resp.Message)

		t.Logf("✓ 其他读者申请同一本书不受影响")
	})
}

// TestReturnRequest 测试归还申请
func TestReturnRequest(t *testing.T) {
	adminToken := AdminToken(t)
	_, memberToken := RegisterTestMember(t, "return_requester")

	t.Run("借出中可申请归还且按期归还罚金为0", func(t *testing.T) {
		bookID := AddTestBook(t, adminToken, "《归还申请测试》", 2)
		loanID := RequestBorrow(t, memberToken, []uint{bookID})

		approveResp := ApproveBorrow(t, adminToken, loanID)
		require.Equal(t, 0, approveResp.Code, "审批借阅失败: %s", approveResp.Message)

		resp := RequestReturn(t, memberToken, loanID)
		require.Equal(t, 0, resp.Code, "归还申请应该成功: %s", resp.Message)

		var data ReturnData
		err := json.Unmarshal(resp.Data, &data)
		require.NoError(t, err, "解析归还响应失败")

		assert.Equal(t, "waiting for return approval", data.Label)
		assert.Equal(t, 0, data.DaysOverdue, "借期内归还无逾期")
		assert.Equal(t, int64(0), data.Fine, "借期内归还罚金为0")

		// 归还申请不改变库存（副本还在读者手上）
		stock, _ := GetBookStock(t, "《归还申请测试》", bookID)
		assert.Equal(t, 1, stock, "归还申请阶段库存不变")

		t.Logf("✓ 归还申请成功，罚金: %d分", data.Fine)
	})

	t.Run("待审批的借阅单不能申请归还", func(t *testing.T) {
		bookID := AddTestBook(t, adminToken, "《非法归还测试》", 2)
		loanID := RequestBorrow(t, memberToken, []uint{bookID})

		resp := RequestReturn(t, memberToken, loanID)
		assert.Equal(t, CodeInvalidTransition, resp.Code, "待审批状态不允许归还")

		t.Logf("✓ 非法状态归还正确被拒: %s", resp.Message)
	})

	t.Run("不能归还他人的借阅单", func(t *testing.T) {
		bookID := AddTestBook(t, adminToken, "《越权归还测试》", 2)
		loanID := RequestBorrow(t, memberToken, []uint{bookID})

		approveResp := ApproveBorrow(t, adminToken, loanID)
		require.Equal(t, 0, approveResp.Code)

		_, otherToken := RegisterTestMember(t, "return_intruder")
		resp := RequestReturn(t, otherToken, loanID)

		assert.NotEqual(t, 0, resp.Code, "越权归还应该失败")

		t.Logf("✓ 越权归还正确被拒: %s", resp.Message)
	})

	t.Run("借阅单不存在", func(t *testing.T) {
		resp := RequestReturn(t, memberToken, 999999999)
		assert.Equal(t, CodeLoanNotFound, resp.Code)

		t.Logf("✓ 借阅单不存在正确返回错误: %s", resp.Message)
	})
}

// TestBookshelf 测试读者书架
func TestBookshelf(t *testing.T) {
	adminToken := AdminToken(t)
	_, memberToken := RegisterTestMember(t, "bookshelf_tester")

	// 准备两张借阅单：一张待审批，一张借出中
	bookID1 := AddTestBook(t, adminToken, "《书架测试A》", 2)
	bookID2 := AddTestBook(t, adminToken, "《书架测试B》", 2)

	loanID1 := RequestBorrow(t, memberToken, []uint{bookID1})
	loanID2 := RequestBorrow(t, memberToken, []uint{bookID2})
	approveResp := ApproveBorrow(t, adminToken, loanID2)
	require.Equal(t, 0, approveResp.Code)

	t.Run("查看全部借阅历史", func(t *testing.T) {
		resp := GetJSON(t, BaseURL+"/bookshelf", memberToken)
		require.Equal(t, 0, resp.Code, "查询书架失败: %s", resp.Message)

		var page PageData
		err := json.Unmarshal(resp.Data, &page)
		require.NoError(t, err, "解析书架响应失败")

		assert.Equal(t, int64(2), page.Total, "书架应有2张借阅单")

		labels := make(map[uint]string)
		for _, l := range page.List {
			labels[l.LoanID] = l.Label
			assert.NotEmpty(t, l.Lines, "借阅单应携带明细")
		}
		assert.Equal(t, "waiting for approval", labels[loanID1])
		assert.Equal(t, "borrowed", labels[loanID2])

		t.Logf("✓ 书架查询成功，共%d张借阅单", page.Total)
	})

	t.Run("按标签筛选", func(t *testing.T) {
		label := url.QueryEscape("waiting for approval")
		resp := GetJSON(t, BaseURL+"/bookshelf?label="+label, memberToken)
		require.Equal(t, 0, resp.Code, "筛选查询失败: %s", resp.Message)

		var page PageData
		err := json.Unmarshal(resp.Data, &page)
		require.NoError(t, err)

		require.Equal(t, int64(1), page.Total, "待审批的借阅单应只有1张")
		assert.Equal(t, loanID1, page.List[0].LoanID)

		t.Logf("✓ 标签筛选正确")
	})

	t.Run("未知标签按参数错误拒绝", func(t *testing.T) {
		resp := GetJSON(t, BaseURL+"/bookshelf?label=unknown", memberToken)
		assert.Equal(t, CodeInvalidParams, resp.Code, "未知筛选键是参数错误,不是空结果")

		t.Logf("✓ 未知标签正确返回错误: %s", resp.Message)
	})

	t.Run("看不到他人的借阅单", func(t *testing.T) {
		_, otherToken := RegisterTestMember(t, "bookshelf_other")

		resp := GetJSON(t, BaseURL+"/bookshelf", otherToken)
		require.Equal(t, 0, resp.Code)

		var page PageData
		err := json.Unmarshal(resp.Data, &page)
		require.NoError(t, err)

		assert.Equal(t, int64(0), page.Total, "新读者书架应为空")

		t.Logf("✓ 书架按读者隔离")
	})
}

// TestBorrowCompleteFlow 测试完整借阅流程（端到端）
//
// 教学说明：
// 这是一个E2E测试，走完一张借阅单的完整生命周期：
// 申请 → 审批 → 归还申请 → 归还审批，并在每一步检查库存
func TestBorrowCompleteFlow(t *testing.T) {
	t.Log("\n========================================")
	t.Log("完整借阅流程测试")
	t.Log("========================================")

	adminToken := AdminToken(t)

	// Step 1: 管理员入库图书
	t.Log("\n➜ Step 1: 管理员入库图书（库存2）")
	bookID := AddTestBook(t, adminToken, "《完整流程测试》", 2)
	t.Logf("✓ 图书入库成功，图书ID: %d", bookID)

	// Step 2: 读者注册并申请借阅
	t.Log("\n➜ Step 2: 读者注册并申请借阅")
	email, memberToken := RegisterTestMember(t, "完整流程读者")
	t.Logf("✓ 读者注册成功: %s", email)

	loanID := RequestBorrow(t, memberToken, []uint{bookID})
	stock, _ := GetBookStock(t, "《完整流程测试》", bookID)
	require.Equal(t, 2, stock, "申请阶段库存不变")
	t.Logf("✓ 借阅申请成功，借阅单ID: %d（标签: waiting for approval）", loanID)

	// Step 3: 管理员审批借阅 → 库存扣减
	t.Log("\n➜ Step 3: 管理员审批借阅")
	approveResp := ApproveBorrow(t, adminToken, loanID)
	require.Equal(t, 0, approveResp.Code, "审批失败: %s", approveResp.Message)

	var approveData LoanData
	require.NoError(t, json.Unmarshal(approveResp.Data, &approveData))
	require.Equal(t, "borrowed", approveData.Label)

	stock, _ = GetBookStock(t, "《完整流程测试》", bookID)
	require.Equal(t, 1, stock, "审批通过应扣减1本")
	t.Logf("✓ 审批通过，库存 2 → 1（标签: borrowed）")

	// Step 4: 读者申请归还
	t.Log("\n➜ Step 4: 读者申请归还")
	returnResp := RequestReturn(t, memberToken, loanID)
	require.Equal(t, 0, returnResp.Code, "归还申请失败: %s", returnResp.Message)

	var returnData ReturnData
	require.NoError(t, json.Unmarshal(returnResp.Data, &returnData))
	require.Equal(t, "waiting for return approval", returnData.Label)
	require.Equal(t, int64(0), returnData.Fine, "借期内归还罚金为0")
	t.Logf("✓ 归还申请成功（标签: waiting for return approval, 罚金: 0）")

	// Step 5: 管理员审批归还 → 库存归还，借阅单完结
	t.Log("\n➜ Step 5: 管理员审批归还")
	finishResp := PostJSON(t, fmt.Sprintf("%s/admin/loans/%d/return/approve", BaseURL, loanID), nil, adminToken)
	require.Equal(t, 0, finishResp.Code, "归还审批失败: %s", finishResp.Message)

	var finishData ReturnData
	require.NoError(t, json.Unmarshal(finishResp.Data, &finishData))
	require.Equal(t, "completed", finishData.Label)

	stock, available := GetBookStock(t, "《完整流程测试》", bookID)
	require.Equal(t, 2, stock, "完结后库存应复原")
	require.True(t, available)

	t.Log("\n========================================")
	t.Log("✅ 完整借阅流程测试通过")
	t.Log("========================================")
	t.Log("\n业务流程总结：")
	t.Log("1. 申请借阅 → 建单不占库存（waiting for approval）")
	t.Log("2. 审批通过 → 库存 2→1（borrowed）")
	t.Log("3. 申请归还 → 库存不变（waiting for return approval）")
	t.Log("4. 归还审批 → 库存 1→2（completed，终态）")
}
