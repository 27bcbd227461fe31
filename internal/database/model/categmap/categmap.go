package categmap

import (
	"WooWithMoysklad/pkg/logging"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

type CategoryMapping struct {
	ID    int            `db:"ID"`
	MsID  string         `db:"MsID"`
	WooID int            `db:"WooID"`
	Name  sql.NullString `db:"Name"`
}

func (c *CategoryMapping) SelectByMsID(db *sqlx.DB) ([]*CategoryMapping, error) {
	logger := logging.GetLogger()
	logger.Debug("Start CategoryMapping.SelectByMsID")
	defer logger.Debug("End CategoryMapping.SelectByMsID")

	var mappingsInDb []*CategoryMapping

	if c.MsID == "" {
		return nil, errors.New("не указан MsID")
	}

	query := "SELECT * FROM CategoryMapping WHERE MsID=$1;"
	err := db.Select(&mappingsInDb, query, c.MsID)
	logger.Debugf("SELECT:\n%s(%s)", query, c.MsID)
	if err != nil {
		return nil, errors.Wrapf(err, "failed SELECT to dbsqlite; query:\n%s(%s)", query, c.MsID)
	}

	logger.Debugf("Количество полученных строк: %d", len(mappingsInDb))
	return mappingsInDb, nil
}

func SelectAll(db *sqlx.DB) ([]*CategoryMapping, error) {
	logger := logging.GetLogger()
	logger.Debug("Start categmap.SelectAll")
	defer logger.Debug("End categmap.SelectAll")

	var mappingsInDb []*CategoryMapping

	query := "SELECT * FROM CategoryMapping;"
	err := db.Select(&mappingsInDb, query)
	if err != nil {
		return nil, errors.Wrapf(err, "failed SELECT to dbsqlite; query:\n%s", query)
	}

	logger.Debugf("Количество полученных строк: %d", len(mappingsInDb))
	return mappingsInDb, nil
}

func (c *CategoryMapping) Save(db *sqlx.DB) error {

	logger := logging.GetLogger()
	logger.Debug("Start CategoryMapping.Save")
	defer logger.Debug("End CategoryMapping.Save")

	var err error
	var query string

	if c.MsID == "" {
		return errors.New("не указан MsID")
	}
	if c.WooID == 0 {
		return errors.New("не указан WooID")
	}

	mappingsInDb, err := c.SelectByMsID(db)
	if err != nil {
		return errors.Wrapf(err, "failed in SelectByMsID()")
	}

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
		query = "INSERT INTO CategoryMapping (MsID, WooID, Name) VALUES ($1, $2, $3);"
		logger.Debugf("INSERT:\n%s(%v)", query, c)
		tx.MustExec(query, c.MsID, c.WooID, c.Name)
	} else {
		logger.Debug("Требуется обновление строки")
		query = "UPDATE CategoryMapping SET WooID=:WooID, Name=:Name WHERE MsID=:MsID;"
		logger.Debugf("UPDATE:\n%s(%v)", query, c)
		_, err = tx.NamedExec(query,
			map[string]interface{}{
				"MsID":  c.MsID,
				"WooID": c.WooID,
				"Name":  c.Name,
			})
		if err != nil {
			return errors.Wrapf(err, "failed UPDATE to dbsqlite; query:\n%s(%v)", query, c)
		}
	}

	err = tx.Commit()
	if err != nil {
		return errors.Wrapf(err, "failed Commit to dbsqlite; query:\n%s(%v)", query, c)
	}

	logger.Debug("Строка сохранена успешно")
	return nil
}
