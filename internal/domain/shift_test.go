package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(n int) *int {
	return &n
}

func TestEvaluateSufficiency(t *testing.T) {
	t.Run("缺人", func(t *testing.T) {
		assert.Equal(t, Understaffed, EvaluateSufficiency(1, 2, nil))
	})

	t.Run("严重缺人", func(t *testing.T) {
		// 缺口超过 1 人
		assert.Equal(t, SeverelyUnderstaffed, EvaluateSufficiency(0, 2, nil))
		assert.Equal(t, SeverelyUnderstaffed, EvaluateSufficiency(1, 4, nil))
	})

	t.Run("人数充足", func(t *testing.T) {
		assert.Equal(t, Sufficient, EvaluateSufficiency(2, 2, nil))
		assert.Equal(t, Sufficient, EvaluateSufficiency(3, 2, nil))
		assert.Equal(t, Sufficient, EvaluateSufficiency(2, 2, intPtr(3)))
	})

	t.Run("超员", func(t *testing.T) {
		assert.Equal(t, Overstaffed, EvaluateSufficiency(4, 2, intPtr(3)))
	})
}

func TestShiftSufficiency(t *testing.T) {
	shift := &Shift{
		AssignedEmployeeIDs: []int64{1},
		RequiredStaff:       2,
	}
	assert.Equal(t, Understaffed, shift.Sufficiency())

	shift.AssignedEmployeeIDs = append(shift.AssignedEmployeeIDs, 2)
	assert.Equal(t, Sufficient, shift.Sufficiency())

	shift.MaxStaff = intPtr(2)
	shift.AssignedEmployeeIDs = append(shift.AssignedEmployeeIDs, 3)
	assert.Equal(t, Overstaffed, shift.Sufficiency())
}

func TestShiftMarshalJSON(t *testing.T) {
	shift := &Shift{
		ID:                  "s1",
		Start:               time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
		End:                 time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC),
		ShiftType:           ShiftTypeOpen,
		AssignedEmployeeIDs: []int64{1},
		RequiredStaff:       3,
	}

	raw, err := json.Marshal(shift)
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &got))

	// 派生字段随正常字段一起输出
	assert.Equal(t, "s1", got["id"])
	assert.Equal(t, string(ShiftAssigned), got["status"])
	assert.Equal(t, string(SeverelyUnderstaffed), got["sufficiency"])

	// version 是内部字段，不对外暴露
	_, exposed := got["version"]
	assert.False(t, exposed)
}
