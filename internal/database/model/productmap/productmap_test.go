package productmap

import (
	"WooWithMoysklad/internal/database"
	"database/sql"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Connect("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed sqlx.Connect; %v", err)
	}
	t.Cleanup(func() { db.Close() })
	db.MustExec(database.DB_SCHEMA)
	return db
}

func TestSaveInsertAndUpdate(t *testing.T) {
	Assert := assert.New(t)
	db := newTestDB(t)

	mapping := ProductMapping{
		MsID:  "ms-1",
		WooID: 101,
		Sku:   sql.NullString{String: "SKU-1", Valid: true},
	}
	Assert.NoError(mapping.Save(db))

	mappingsInDb, err := mapping.SelectByMsID(db)
	Assert.NoError(err)
	if Assert.Len(mappingsInDb, 1) {
		Assert.Equal(101, mappingsInDb[0].WooID)
		Assert.Equal("SKU-1", mappingsInDb[0].Sku.String)
		Assert.True(mappingsInDb[0].UpdatedAt.Valid)
	}

	// повторный Save с тем же MsID обновляет строку, а не добавляет вторую
	mapping.WooID = 202
	Assert.NoError(mapping.Save(db))

	mappingsInDb, err = mapping.SelectByMsID(db)
	Assert.NoError(err)
	if Assert.Len(mappingsInDb, 1) {
		Assert.Equal(202, mappingsInDb[0].WooID)
	}
}

func TestSelectByWooID(t *testing.T) {
	Assert := assert.New(t)
	db := newTestDB(t)

	first := ProductMapping{MsID: "ms-1", WooID: 101}
	second := ProductMapping{MsID: "ms-2", WooID: 102}
	Assert.NoError(first.Save(db))
	Assert.NoError(second.Save(db))

	lookup := ProductMapping{WooID: 102}
	mappingsInDb, err := lookup.SelectByWooID(db)
	Assert.NoError(err)
	if Assert.Len(mappingsInDb, 1) {
		Assert.Equal("ms-2", mappingsInDb[0].MsID)
	}
}

func TestSaveRebindsByWooID(t *testing.T) {
	Assert := assert.New(t)
	db := newTestDB(t)

	first := ProductMapping{MsID: "ms-1", WooID: 101}
	Assert.NoError(first.Save(db))

	// тот же товар Woo пересвязан с другим товаром МойСклад -
	// вторая строка с WooID=101 не появляется
	rebind := ProductMapping{MsID: "ms-2", WooID: 101}
	Assert.NoError(rebind.Save(db))

	lookup := ProductMapping{WooID: 101}
	mappingsInDb, err := lookup.SelectByWooID(db)
	Assert.NoError(err)
	if Assert.Len(mappingsInDb, 1) {
		Assert.Equal("ms-2", mappingsInDb[0].MsID)
	}
}

func TestSaveValidation(t *testing.T) {
	Assert := assert.New(t)
	db := newTestDB(t)

	noMsID := ProductMapping{WooID: 101}
	Assert.Error(noMsID.Save(db))

	noWooID := ProductMapping{MsID: "ms-1"}
	Assert.Error(noWooID.Save(db))
}
