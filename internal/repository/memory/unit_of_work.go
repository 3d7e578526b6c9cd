package memory

import (
	"context"
	"fmt"

	"viralizaai-be/internal/entity"
	"viralizaai-be/internal/repository/contract"
	"viralizaai-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type RepositoryFactory struct {
	store *Store
}

func NewRepositoryFactory(store *Store) unitofwork.RepositoryFactory {
	return &RepositoryFactory{store: store}
}

func (f *RepositoryFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &UnitOfWork{store: f.store}
}

// UnitOfWork stages writes made inside Begin/Commit and applies them on
// Commit. Outside a transaction writes go straight to the store.
type UnitOfWork struct {
	store    *Store
	inTx     bool
	payments map[uuid.UUID]*entity.PaymentRecord
	access   map[accessKey]*entity.ToolAccess
}

func (u *UnitOfWork) Begin(ctx context.Context) error {
	if u.inTx {
		return fmt.Errorf("transaction already started")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	u.store.txMu.Lock()
	u.inTx = true
	u.payments = make(map[uuid.UUID]*entity.PaymentRecord)
	u.access = make(map[accessKey]*entity.ToolAccess)
	return nil
}

func (u *UnitOfWork) Commit() error {
	if !u.inTx {
		return fmt.Errorf("no transaction to commit")
	}
	u.store.mu.Lock()
	for id, p := range u.payments {
		u.store.payments[id] = p
	}
	for key, a := range u.access {
		u.store.access[key] = a
	}
	u.store.mu.Unlock()
	u.end()
	return nil
}

func (u *UnitOfWork) Rollback() error {
	if !u.inTx {
		return fmt.Errorf("no transaction to rollback")
	}
	u.end()
	return nil
}

func (u *UnitOfWork) end() {
	u.inTx = false
	u.payments = nil
	u.access = nil
	u.store.txMu.Unlock()
}

func (u *UnitOfWork) PaymentRepository() contract.PaymentRepository {
	return &paymentRepository{uow: u}
}

func (u *UnitOfWork) ToolAccessRepository() contract.ToolAccessRepository {
	return &toolAccessRepository{uow: u}
}

func (u *UnitOfWork) readPayment(id uuid.UUID) *entity.PaymentRecord {
	if u.inTx {
		if p, ok := u.payments[id]; ok {
			return p.Clone()
		}
	}
	return u.store.getPayment(id)
}

func (u *UnitOfWork) writePayment(p *entity.PaymentRecord) {
	if u.inTx {
		u.payments[p.Id] = p.Clone()
		return
	}
	u.store.putPayment(p)
}

func (u *UnitOfWork) readAccess(key accessKey) *entity.ToolAccess {
	if u.inTx {
		if a, ok := u.access[key]; ok {
			return a.Clone()
		}
	}
	return u.store.getAccess(key)
}

func (u *UnitOfWork) writeAccess(a *entity.ToolAccess) {
	if u.inTx {
		u.access[accessKey{a.PrincipalId, a.ToolId}] = a.Clone()
		return
	}
	u.store.putAccess(a)
}

func (u *UnitOfWork) allPayments() []*entity.PaymentRecord {
	all := u.store.snapshotPayments()
	if !u.inTx || len(u.payments) == 0 {
		return all
	}
	merged := make([]*entity.PaymentRecord, 0, len(all)+len(u.payments))
	for _, p := range all {
		if _, staged := u.payments[p.Id]; !staged {
			merged = append(merged, p)
		}
	}
	for _, p := range u.payments {
		merged = append(merged, p.Clone())
	}
	return merged
}

func (u *UnitOfWork) allAccess() []*entity.ToolAccess {
	all := u.store.snapshotAccess()
	if !u.inTx || len(u.access) == 0 {
		return all
	}
	merged := make([]*entity.ToolAccess, 0, len(all)+len(u.access))
	for _, a := range all {
		if _, staged := u.access[accessKey{a.PrincipalId, a.ToolId}]; !staged {
			merged = append(merged, a)
		}
	}
	for _, a := range u.access {
		merged = append(merged, a.Clone())
	}
	return merged
}
