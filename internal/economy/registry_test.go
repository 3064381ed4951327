package economy

import (
	"testing"

	xerrors "Hedera-Agent-Economy/internal/errors"
)

func TestRegistrySeedValidation(t *testing.T) {
	if _, err := NewRegistry(nil, DefaultWorkerID); err == nil {
		t.Fatalf("空名单必须被拒绝")
	}

	if _, err := NewRegistry([]Agent{{ID: ""}}, DefaultWorkerID); err == nil {
		t.Fatalf("空编号必须被拒绝")
	}

	agents := []Agent{{ID: "a"}, {ID: "a"}}
	if _, err := NewRegistry(agents, "a"); err == nil {
		t.Fatalf("重复编号必须被拒绝")
	}

	if _, err := NewRegistry([]Agent{{ID: "a"}}, "missing"); err == nil {
		t.Fatalf("兜底执行者缺席必须被拒绝")
	}

	_, err := NewRegistry(nil, DefaultWorkerID)
	if xerrors.CodeOf(err) != CodeSeedInvalid {
		t.Fatalf("unexpected code: %s", xerrors.CodeOf(err))
	}
}

func TestRegistryResolveFallsBack(t *testing.T) {
	registry, err := NewRegistry(DefaultSeed().Agents, DefaultWorkerID)
	if err != nil {
		t.Fatalf("构造注册表失败: %v", err)
	}

	if got := registry.resolve("worker-data-analyst"); got.ID != "worker-data-analyst" {
		t.Fatalf("expected exact match, got %s", got.ID)
	}
	if got := registry.resolve("worker-unknown"); got.ID != DefaultWorkerID {
		t.Fatalf("expected fallback %s, got %s", DefaultWorkerID, got.ID)
	}
}

func TestRegistryListOrderAndIsolation(t *testing.T) {
	registry, err := NewRegistry(DefaultSeed().Agents, DefaultWorkerID)
	if err != nil {
		t.Fatalf("构造注册表失败: %v", err)
	}

	list := registry.List()
	if len(list) != 6 {
		t.Fatalf("expected 6 agents, got %d", len(list))
	}
	if list[0].ID != "registry-001" || list[5].ID != "settlement-001" {
		t.Fatalf("list order drifted: %s .. %s", list[0].ID, list[5].ID)
	}

	// 修改返回的拷贝不得影响注册表内部状态。
	list[2].TasksCompleted = 9999
	list[2].Skills[0] = "mutated"

	again, ok := registry.Get("worker-summarizer")
	if !ok {
		t.Fatalf("worker-summarizer 应该存在")
	}
	if again.TasksCompleted != 89 || again.Skills[0] != "summarize" {
		t.Fatalf("caller mutation leaked into registry: %+v", again)
	}
}

func TestRegistryBusyCount(t *testing.T) {
	registry, err := NewRegistry(DefaultSeed().Agents, DefaultWorkerID)
	if err != nil {
		t.Fatalf("构造注册表失败: %v", err)
	}
	if got := registry.BusyCount(); got != 2 {
		t.Fatalf("expected 2 busy agents, got %d", got)
	}
}
