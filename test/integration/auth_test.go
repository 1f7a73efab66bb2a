package integration

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 教学说明：认证模块集成测试
//
// 集成测试 vs 单元测试：
// - 单元测试：Mock外部依赖（数据库、Redis），测试单个函数的逻辑
// - 集成测试：使用真实的数据库和Redis，测试完整的API流程
//
// 运行方式：
//   go test -v ./test/integration/...
// 前置条件见helper.go头部说明

// TestRegister 测试读者注册功能
func TestRegister(t *testing.T) {
	t.Run("正常注册", func(t *testing.T) {
		email := GenerateTestEmail("normal_member")
		registerReq := map[string]string{
			"email":    email,
			"password": "Test1234",
			"name":     "测试读者",
		}

		resp := PostJSON(t, BaseURL+"/auth/register", registerReq, "")
		assert.Equal(t, 0, resp.Code, "注册应该成功")

		var data RegisterData
		err := json.Unmarshal(resp.Data, &data)
		require.NoError(t, err, "解析响应数据失败")

		assert.NotZero(t, data.ID, "用户ID应该大于0")
		assert.Equal(t, email, data.Email, "返回的邮箱应该与请求一致")
		assert.Equal(t, "member", data.Role, "注册接口固定开读者角色")

		t.Logf("✓ 注册成功，用户ID: %d, 角色: %s", data.ID, data.Role)
	})

	t.Run("重复邮箱注册应失败", func(t *testing.T) {
		email := GenerateTestEmail("duplicate_member")
		registerReq := map[string]string{
			"email":    email,
			"password": "Test1234",
			"name":     "测试读者1",
		}

		resp1 := PostJSON(t, BaseURL+"/auth/register", registerReq, "")
		require.Equal(t, 0, resp1.Code, "第一次注册应该成功")

		registerReq["name"] = "测试读者2"
		resp2 := PostJSON(t, BaseURL+"/auth/register", registerReq, "")

		assert.NotEqual(t, 0, resp2.Code, "重复邮箱注册应该失败")

		t.Logf("✓ 重复邮箱注册正确返回错误: %s", resp2.Message)
	})

	t.Run("密码过短应失败", func(t *testing.T) {
		registerReq := map[string]string{
			"email":    GenerateTestEmail("short_pwd"),
			"password": "123",
			"name":     "测试读者",
		}

		resp := PostJSON(t, BaseURL+"/auth/register", registerReq, "")
		assert.NotEqual(t, 0, resp.Code, "密码过短应该失败")

		t.Logf("✓ 密码过短正确返回错误: %s", resp.Message)
	})

	t.Run("邮箱格式错误应失败", func(t *testing.T) {
		registerReq := map[string]string{
			"email":    "invalid-email",
			"password": "Test1234",
			"name":     "测试读者",
		}

		resp := PostJSON(t, BaseURL+"/auth/register", registerReq, "")
		assert.NotEqual(t, 0, resp.Code, "邮箱格式错误应该失败")

		t.Logf("✓ 邮箱格式错误正确返回错误: %s", resp.Message)
	})
}

// TestLogin 测试登录功能
func TestLogin(t *testing.T) {
	// 准备测试数据：先注册一个读者
	email := GenerateTestEmail("login_test")
	password := "Test1234"
	registerResp := PostJSON(t, BaseURL+"/auth/register", map[string]string{
		"email":    email,
		"password": password,
		"name":     "登录测试读者",
	}, "")
	require.Equal(t, 0, registerResp.Code, "准备测试数据：注册读者")

	t.Run("正常登录", func(t *testing.T) {
		resp := PostJSON(t, BaseURL+"/auth/login", map[string]string{
			"email":    email,
			"password": password,
		}, "")
		assert.Equal(t, 0, resp.Code, "登录应该成功")

		var data LoginData
		err := json.Unmarshal(resp.Data, &data)
		require.NoError(t, err, "解析响应数据失败")

		assert.NotEmpty(t, data.AccessToken, "应该返回access_token")
		assert.NotEmpty(t, data.RefreshToken, "应该返回refresh_token")
		// JWT由三部分组成：header.payload.signature
		assert.Contains(t, data.AccessToken, ".", "JWT Token应该包含点号分隔符")

		t.Logf("✓ 登录成功，Access Token长度: %d", len(data.AccessToken))
	})

	t.Run("密码错误应失败", func(t *testing.T) {
		resp := PostJSON(t, BaseURL+"/auth/login", map[string]string{
			"email":    email,
			"password": "WrongPassword",
		}, "")

		assert.NotEqual(t, 0, resp.Code, "密码错误应该失败")

		t.Logf("✓ 密码错误正确返回错误: %s", resp.Message)
	})

	t.Run("用户不存在应失败", func(t *testing.T) {
		resp := PostJSON(t, BaseURL+"/auth/login", map[string]string{
			"email":    "nonexistent@test.com",
			"password": "Test1234",
		}, "")

		assert.NotEqual(t, 0, resp.Code, "用户不存在应该失败")

		t.Logf("✓ 用户不存在正确返回错误: %s", resp.Message)
	})

	t.Run("Token可以访问受保护接口", func(t *testing.T) {
		_, token := RegisterTestMember(t, "token_tester")

		resp := GetJSON(t, BaseURL+"/bookshelf", token)
		assert.Equal(t, 0, resp.Code, "有效Token应该可以访问书架")

		t.Logf("✓ Token验证通过，可以访问受保护接口")
	})

	t.Run("无效Token应被拒绝", func(t *testing.T) {
		resp := GetJSON(t, BaseURL+"/bookshelf", "invalid.jwt.token")

		assert.NotEqual(t, 0, resp.Code, "无效Token应该被拒绝")

		t.Logf("✓ 无效Token正确被拒绝: %s", resp.Message)
	})
}

// TestLogout 测试登出功能
//
// 教学说明：
// 登出后Token进入Redis黑名单，再次使用同一Token应被拒绝
func TestLogout(t *testing.T) {
	_, token := RegisterTestMember(t, "logout_tester")

	// 登出前可以访问
	resp := GetJSON(t, BaseURL+"/bookshelf", token)
	require.Equal(t, 0, resp.Code, "登出前应可访问")

	// 登出
	logoutResp := PostJSON(t, BaseURL+"/auth/logout", nil, token)
	require.Equal(t, 0, logoutResp.Code, "登出应该成功: %s", logoutResp.Message)

	// 登出后同一Token被黑名单拦截
	resp = GetJSON(t, BaseURL+"/bookshelf", token)
	assert.NotEqual(t, 0, resp.Code, "登出后Token应失效")

	t.Logf("✓ 登出后Token正确失效: %s", resp.Message)
}
