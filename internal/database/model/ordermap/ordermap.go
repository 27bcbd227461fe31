package ordermap

import (
	"WooWithMoysklad/pkg/logging"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

type OrderMapping struct {
	ID        int            `db:"ID"`
	WooID     int            `db:"WooID"`
	MsID      string         `db:"MsID"`
	MsName    sql.NullString `db:"MsName"`
	Status    sql.NullString `db:"Status"`
	UpdatedAt sql.NullString `db:"UpdatedAt"`
}

func (o *OrderMapping) SelectByWooID(db *sqlx.DB) ([]*OrderMapping, error) {
	logger := logging.GetLogger()
	logger.Debug("Start OrderMapping.SelectByWooID")
	defer logger.Debug("End OrderMapping.SelectByWooID")

	var mappingsInDb []*OrderMapping

	if o.WooID == 0 {
		return nil, errors.New("не указан WooID")
	}

	query := "SELECT * FROM OrderMapping WHERE WooID=$1;"
	err := db.Select(&mappingsInDb, query, o.WooID)
	logger.Debugf("SELECT:\n%s(%d)", query, o.WooID)
	if err != nil {
		return nil, errors.Wrapf(err, "failed SELECT to dbsqlite; query:\n%s(%d)", query, o.WooID)
	}

	logger.Debugf("Количество полученных строк: %d", len(mappingsInDb))
	return mappingsInDb, nil
}

func (o *OrderMapping) SelectByMsID(db *sqlx.DB) ([]*OrderMapping, error) {
	logger := logging.GetLogger()
	logger.Debug("Start OrderMapping.SelectByMsID")
	defer logger.Debug("End OrderMapping.SelectByMsID")

	var mappingsInDb []*OrderMapping

	if o.MsID == "" {
		return nil, errors.New("не указан MsID")
	}

	query := "SELECT * FROM OrderMapping WHERE MsID=$1;"
	err := db.Select(&mappingsInDb, query, o.MsID)
	logger.Debugf("SELECT:\n%s(%s)", query, o.MsID)
	if err != nil {
		return nil, errors.Wrapf(err, "failed SELECT to dbsqlite; query:\n%s(%s)", query, o.MsID)
	}

	logger.Debugf("Количество полученных строк: %d", len(mappingsInDb))
	return mappingsInDb, nil
}

func (o *OrderMapping) Save(db *sqlx.DB) error {

	logger := logging.GetLogger()
	logger.Debug("Start OrderMapping.Save")
	defer logger.Debug("End OrderMapping.Save")

	var err error
	var query string

	if o.WooID == 0 {
		return errors.New("не указан WooID")
	}
	if o.MsID == "" {
		return errors.New("не указан MsID")
	}

	mappingsInDb, err := o.SelectByWooID(db)
	if err != nil {
		return errors.Wrapf(err, "failed in SelectByWooID()")
	}

	o.UpdatedAt = sql.NullString{String: time.Now().Format(time.RFC3339), Valid: true}

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
		query = "INSERT INTO OrderMapping (WooID, MsID, MsName, Status, UpdatedAt) VALUES ($1, $2, $3, $4, $5);"
		logger.Debugf("INSERT:\n%s(%v)", query, o)
		tx.MustExec(query, o.WooID, o.MsID, o.MsName, o.Status, o.UpdatedAt)
	} else {
		logger.Debug("Требуется обновление строки")
		query = "UPDATE OrderMapping SET MsID=:MsID, MsName=:MsName, Status=:Status, UpdatedAt=:UpdatedAt WHERE WooID=:WooID;"
		logger.Debugf("UPDATE:\n%s(%v)", query, o)
		_, err = tx.NamedExec(query,
			map[string]interface{}{
				"WooID":     o.WooID,
				"MsID":      o.MsID,
				"MsName":    o.MsName,
				"Status":    o.Status,
				"UpdatedAt": o.UpdatedAt,
			})
		if err != nil {
			return errors.Wrapf(err, "failed UPDATE to dbsqlite; query:\n%s(%v)", query, o)
		}
	}

	err = tx.Commit()
	if err != nil {
		return errors.Wrapf(err, "failed Commit to dbsqlite; query:\n%s(%v)", query, o)
	}

	logger.Debug("Строка сохранена успешно")
	return nil
}
