package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSlotKeys(t *testing.T) {
	t.Run("合法的键", func(t *testing.T) {
		assert.NoError(t, ValidateSlotKeys([]string{
			"MON|08:00|08:55",
			"SAT|16:55|17:50",
		}))
	})

	t.Run("空集合也合法", func(t *testing.T) {
		assert.NoError(t, ValidateSlotKeys([]string{}))
	})

	t.Run("不在网格内的键", func(t *testing.T) {
		assert.Error(t, ValidateSlotKeys([]string{"SUN|08:00|08:55"}))
		assert.Error(t, ValidateSlotKeys([]string{"MON|09:00|09:55"}))
		assert.Error(t, ValidateSlotKeys([]string{"MON|08:00"}))
	})
}
