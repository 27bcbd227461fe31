package sync

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTryLockSyncExcludesSecondRun(t *testing.T) {
	Assert := assert.New(t)

	Assert.False(SyncInProgress())
	Assert.True(TryLockSync())

	// пока прогон держит замок, выгрузка заказов и запуск из
	// админки получают отказ
	Assert.True(SyncInProgress())
	Assert.False(TryLockSync())

	UnlockSync()
	Assert.False(SyncInProgress())
	Assert.True(TryLockSync())
	UnlockSync()
}
