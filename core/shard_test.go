package core

import "testing"

func TestAddShardHasDefaultNodes(t *testing.T) {
	c := NewShardCoordinator(10)
	s := c.AddShard()
	if len(s.Nodes) != defaultShardNodes {
		t.Fatalf("expected %d default nodes, got %d", defaultShardNodes, len(s.Nodes))
	}
}

func TestRouteShardNoActiveShards(t *testing.T) {
	c := NewShardCoordinator(10)
	if _, err := c.RouteShard("alice"); err == nil {
		t.Fatal("expected an error routing with no shards")
	}
}

func TestRouteShardIsDeterministic(t *testing.T) {
	c := NewShardCoordinator(10)
	c.AddShard()
	c.AddShard()
	a, err := c.RouteShard("alice")
	if err != nil {
		t.Fatalf("RouteShard: %v", err)
	}
	b, err := c.RouteShard("alice")
	if err != nil {
		t.Fatalf("RouteShard: %v", err)
	}
	if a != b {
		t.Fatalf("routing the same sender twice gave different shards: %d vs %d", a, b)
	}
}

func TestAddTransactionToShardCapacityExceeded(t *testing.T) {
	c := NewShardCoordinator(2)
	s := c.AddShard()
	tx, _ := NewTransfer("a", "b", 1, "")
	if err := c.AddTransactionToShard(s.ID, tx); err != nil {
		t.Fatalf("AddTransactionToShard: %v", err)
	}
	if err := c.AddTransactionToShard(s.ID, tx); err != nil {
		t.Fatalf("AddTransactionToShard: %v", err)
	}
	if err := c.AddTransactionToShard(s.ID, tx); err == nil {
		t.Fatal("expected CapacityExceeded on the third insert into a capacity-2 shard")
	}
}

func TestRemoveShardRejectsNonzeroLoad(t *testing.T) {
	c := NewShardCoordinator(10)
	s := c.AddShard()
	tx, _ := NewTransfer("a", "b", 1, "")
	if err := c.AddTransactionToShard(s.ID, tx); err != nil {
		t.Fatalf("AddTransactionToShard: %v", err)
	}
	if err := c.RemoveShard(s.ID); err == nil {
		t.Fatal("expected an error removing a shard with pending load")
	}
}

func TestCrossShardTransactionCommit(t *testing.T) {
	c := NewShardCoordinator(10)
	a := c.AddShard()
	b := c.AddShard()
	tx, _ := NewTransfer("alice", "bob", 1, "")
	cst, err := c.CreateCrossShardTransaction(a.ID, b.ID, tx)
	if err != nil {
		t.Fatalf("CreateCrossShardTransaction: %v", err)
	}
	if cst.Status != CrossShardPending {
		t.Fatalf("expected Pending status, got %s", cst.Status)
	}
	if err := c.CommitCrossShardTransaction(cst.ID); err != nil {
		t.Fatalf("CommitCrossShardTransaction: %v", err)
	}
	got, _ := c.CrossShardTransaction(cst.ID)
	if got.Status != CrossShardCommitted {
		t.Fatalf("expected Committed status, got %s", got.Status)
	}
	dst, _ := c.Shard(b.ID)
	if len(dst.Pending) != 1 {
		t.Fatalf("expected the destination shard to hold the committed tx, got %d pending", len(dst.Pending))
	}
}

func TestCreateCrossShardTransactionRejectsSameShard(t *testing.T) {
	c := NewShardCoordinator(10)
	s := c.AddShard()
	tx, _ := NewTransfer("a", "b", 1, "")
	if _, err := c.CreateCrossShardTransaction(s.ID, s.ID, tx); err == nil {
		t.Fatal("expected an error for a cross-shard transaction with identical source and destination")
	}
}

func TestTriggerRebalancingMovesLoadFromOverloadedShard(t *testing.T) {
	c := NewShardCoordinator(100)
	a := c.AddShard()
	b := c.AddShard()
	for i := 0; i < 50; i++ {
		tx, _ := NewTransfer("a", "b", 1, "")
		if err := c.AddTransactionToShard(a.ID, tx); err != nil {
			t.Fatalf("AddTransactionToShard: %v", err)
		}
	}
	c.TriggerRebalancing()
	shardA, _ := c.Shard(a.ID)
	shardB, _ := c.Shard(b.ID)
	if len(shardB.Pending) == 0 {
		t.Fatalf("expected rebalancing to move some load onto the empty shard; shardA=%d shardB=%d", len(shardA.Pending), len(shardB.Pending))
	}
}
