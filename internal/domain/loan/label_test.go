package loan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/library/internal/domain/bookreturn"
)

// 教学说明:标签派生是所有读路径的统一口径,
// 这里固定全部6个标签的派生规则,任何口径变化都会让测试失败

// TestLabelDerivation 标签派生规则表
func TestLabelDerivation(t *testing.T) {
	rejected := &bookreturn.Return{Approval: bookreturn.Rejected(1, "书有破损")}
	pending := &bookreturn.Return{Approval: bookreturn.Pending()}
	approved := &bookreturn.Return{Approval: bookreturn.Approved(1)}

	tests := []struct {
		name   string
		status Status
		ret    *bookreturn.Return
		want   string
	}{
		{"待审批", StatusRequested, nil, LabelWaitingApproval},
		{"借出中且无归还记录", StatusActive, nil, LabelBorrowed},
		{"借出中且归还待审", StatusActive, pending, LabelBorrowed},
		{"借出中且归还被驳回", StatusActive, rejected, LabelBorrowedReturnRejected},
		{"待归还审批", StatusReturnRequested, pending, LabelWaitingReturnApproval},
		{"待归还审批时忽略归还标记", StatusReturnRequested, rejected, LabelWaitingReturnApproval},
		{"已完结", StatusCompleted, approved, LabelCompleted},
		{"已驳回", StatusRejected, nil, LabelRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Label(tt.status, tt.ret))

			l := &Loan{Status: tt.status, Return: tt.ret}
			assert.Equal(t, tt.want, l.Label(), "实体方法与纯函数口径应一致")
		})
	}

	t.Logf("✓ 全部标签派生规则验证通过")
}

// TestParseLabelFilter 标签筛选键解析
func TestParseLabelFilter(t *testing.T) {
	t.Run("合法标签逐一解析", func(t *testing.T) {
		for _, label := range AllLabels() {
			f, err := ParseLabelFilter(label)
			require.NoError(t, err, "标签%q应可解析", label)
			assert.NotZero(t, f.Status)
		}
	})

	t.Run("borrowed区分归还驳回标记", func(t *testing.T) {
		f1, err := ParseLabelFilter(LabelBorrowed)
		require.NoError(t, err)
		assert.Equal(t, StatusActive, f1.Status)
		require.NotNil(t, f1.ReturnRejected)
		assert.False(t, *f1.ReturnRejected)

		f2, err := ParseLabelFilter(LabelBorrowedReturnRejected)
		require.NoError(t, err)
		assert.Equal(t, StatusActive, f2.Status)
		require.NotNil(t, f2.ReturnRejected)
		assert.True(t, *f2.ReturnRejected, "两个标签共用Active状态,靠归还驳回标记区分")
	})

	t.Run("未知标签按参数错误拒绝", func(t *testing.T) {
		_, err := ParseLabelFilter("pending")
		assert.ErrorIs(t, err, ErrUnknownLabelFilter, "未知筛选键是参数错误,不是查无结果")

		_, err = ParseLabelFilter("")
		assert.ErrorIs(t, err, ErrUnknownLabelFilter)
	})
}
