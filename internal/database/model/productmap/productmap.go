package productmap

import (
	"WooWithMoysklad/pkg/logging"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

type ProductMapping struct {
	ID        int            `db:"ID"`
	MsID      string         `db:"MsID"`
	WooID     int            `db:"WooID"`
	Sku       sql.NullString `db:"Sku"`
	Name      sql.NullString `db:"Name"`
	UpdatedAt sql.NullString `db:"UpdatedAt"`
}

func (p *ProductMapping) SelectByMsID(db *sqlx.DB) ([]*ProductMapping, error) {
	logger := logging.GetLogger()
	logger.Debug("Start ProductMapping.SelectByMsID")
	defer logger.Debug("End ProductMapping.SelectByMsID")

	var mappingsInDb []*ProductMapping

	if p.MsID == "" {
		return nil, errors.New("не указан MsID")
	}

	query := "SELECT * FROM ProductMapping WHERE MsID=$1;"
	err := db.Select(&mappingsInDb, query, p.MsID)
	logger.Debugf("SELECT:\n%s(%s)", query, p.MsID)
	if err != nil {
		return nil, errors.Wrapf(err, "failed SELECT to dbsqlite; query:\n%s(%s)", query, p.MsID)
	}

	logger.Debugf("Количество полученных строк: %d", len(mappingsInDb))
	return mappingsInDb, nil
}

func (p *ProductMapping) SelectByWooID(db *sqlx.DB) ([]*ProductMapping, error) {
	logger := logging.GetLogger()
	logger.Debug("Start ProductMapping.SelectByWooID")
	defer logger.Debug("End ProductMapping.SelectByWooID")

	var mappingsInDb []*ProductMapping

	if p.WooID == 0 {
		return nil, errors.New("не указан WooID")
	}

	query := "SELECT * FROM ProductMapping WHERE WooID=$1;"
	err := db.Select(&mappingsInDb, query, p.WooID)
	logger.Debugf("SELECT:\n%s(%d)", query, p.WooID)
	if err != nil {
		return nil, errors.Wrapf(err, "failed SELECT to dbsqlite; query:\n%s(%d)", query, p.WooID)
	}

	logger.Debugf("Количество полученных строк: %d", len(mappingsInDb))
	return mappingsInDb, nil
}

// Save - добавить или обновить связку MsID<->WooID
func (p *ProductMapping) Save(db *sqlx.DB) error {

	logger := logging.GetLogger()
	logger.Debug("Start ProductMapping.Save")
	defer logger.Debug("End ProductMapping.Save")

	var err error
	var query string

	if p.MsID == "" {
		return errors.New("не указан MsID")
	}
	if p.WooID == 0 {
		return errors.New("не указан WooID")
	}

	// сперва ищем по WooID, затем по MsID - чтобы пересвязка
	// товара не оставляла вторую строку с тем же WooID
	byWooID := true
	mappingsInDb, err := p.SelectByWooID(db)
	if err != nil {
		return errors.Wrapf(err, "failed in SelectByWooID()")
	}
	if len(mappingsInDb) == 0 {
		byWooID = false
		mappingsInDb, err = p.SelectByMsID(db)
		if err != nil {
			return errors.Wrapf(err, "failed in SelectByMsID()")
		}
	}

	p.UpdatedAt = sql.NullString{String: time.Now().Format(time.RFC3339), Valid: true}

	tx := db.MustBegin()
	defer func() {
		if err != nil {
			logger.Error(err)
			err := tx.Rollback()
			if err != nil {
				logger.Errorf("failed in Rollback(); %v", err)
			} else {
				logger.Info("Rollback() is done")
			}
		}
	}()

	if len(mappingsInDb) == 0 {
		logger.Debug("Строка не найдена, требуется ее добавить")
		query = "INSERT INTO ProductMapping (MsID, WooID, Sku, Name, UpdatedAt) VALUES ($1, $2, $3, $4, $5);"
		logger.Debugf("INSERT:\n%s(%v)", query, p)
		tx.MustExec(query, p.MsID, p.WooID, p.Sku, p.Name, p.UpdatedAt)
	} else {
		logger.Debug("Требуется обновление строки")
		if byWooID {
			query = "UPDATE ProductMapping SET MsID=:MsID, Sku=:Sku, Name=:Name, UpdatedAt=:UpdatedAt WHERE WooID=:WooID;"
		} else {
			query = "UPDATE ProductMapping SET WooID=:WooID, Sku=:Sku, Name=:Name, UpdatedAt=:UpdatedAt WHERE MsID=:MsID;"
		}
		logger.Debugf("UPDATE:\n%s(%v)", query, p)
		_, err = tx.NamedExec(query,
			map[string]interface{}{
				"MsID":      p.MsID,
				"WooID":     p.WooID,
				"Sku":       p.Sku,
				"Name":      p.Name,
				"UpdatedAt": p.UpdatedAt,
			})
		if err != nil {
			return errors.Wrapf(err, "failed UPDATE to dbsqlite; query:\n%s(%v)", query, p)
		}
	}

	err = tx.Commit()
	if err != nil {
		return errors.Wrapf(err, "failed Commit to dbsqlite; query:\n%s(%v)", query, p)
	}

	logger.Debug("Строка сохранена успешно")
	return nil
}
