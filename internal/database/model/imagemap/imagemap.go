package imagemap

import (
	"WooWithMoysklad/pkg/logging"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// Image - загруженные в медиатеку картинки, ключ дедупликации WooProductID+MsHref
type Image struct {
	ID           int           `db:"ID"`
	WooProductID int           `db:"WooProductID"`
	MsHref       string        `db:"MsHref"`
	MediaID      sql.NullInt32 `db:"MediaID"`
	Pos          sql.NullInt32 `db:"Pos"`
}

func (i *Image) SelectByWooProductID(db *sqlx.DB) ([]*Image, error) {
	logger := logging.GetLogger()
	logger.Debug("Start Image.SelectByWooProductID")
	defer logger.Debug("End Image.SelectByWooProductID")

	var imagesInDb []*Image

	if i.WooProductID == 0 {
		return nil, errors.New("не указан WooProductID")
	}

	query := "SELECT * FROM Image WHERE WooProductID=$1 ORDER BY Pos;"
	err := db.Select(&imagesInDb, query, i.WooProductID)
	logger.Debugf("SELECT:\n%s(%d)", query, i.WooProductID)
	if err != nil {
		return nil, errors.Wrapf(err, "failed SELECT to dbsqlite; query:\n%s(%d)", query, i.WooProductID)
	}

	logger.Debugf("Количество полученных строк: %d", len(imagesInDb))
	return imagesInDb, nil
}

func (i *Image) SelectByWooProductIDAndMsHref(db *sqlx.DB) ([]*Image, error) {
	logger := logging.GetLogger()
	logger.Debug("Start Image.SelectByWooProductIDAndMsHref")
	defer logger.Debug("End Image.SelectByWooProductIDAndMsHref")

	var imagesInDb []*Image

	if i.WooProductID == 0 {
		return nil, errors.New("не указан WooProductID")
	}
	if i.MsHref == "" {
		return nil, errors.New("не указан MsHref")
	}

	query := "SELECT * FROM Image WHERE WooProductID=$1 AND MsHref=$2;"
	err := db.Select(&imagesInDb, query, i.WooProductID, i.MsHref)
	logger.Debugf("SELECT:\n%s(%d, %s)", query, i.WooProductID, i.MsHref)
	if err != nil {
		return nil, errors.Wrapf(err, "failed SELECT to dbsqlite; query:\n%s(%d, %s)", query, i.WooProductID, i.MsHref)
	}

	logger.Debugf("Количество полученных строк: %d", len(imagesInDb))
	return imagesInDb, nil
}

func (i *Image) Save(db *sqlx.DB) error {

	logger := logging.GetLogger()
	logger.Debug("Start Image.Save")
	defer logger.Debug("End Image.Save")

	var err error
	var query string

	imagesInDb, err := i.SelectByWooProductIDAndMsHref(db)
	if err != nil {
		return errors.Wrapf(err, "failed in SelectByWooProductIDAndMsHref()")
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

	if len(imagesInDb) == 0 {
		logger.Debug("Строка не найдена, требуется ее добавить")
		query = "INSERT INTO Image (WooProductID, MsHref, MediaID, Pos) VALUES ($1, $2, $3, $4);"
		logger.Debugf("INSERT:\n%s(%v)", query, i)
		tx.MustExec(query, i.WooProductID, i.MsHref, i.MediaID, i.Pos)
	} else {
		logger.Debug("Требуется обновление строки")
		query = "UPDATE Image SET MediaID=:MediaID, Pos=:Pos WHERE WooProductID=:WooProductID AND MsHref=:MsHref;"
		logger.Debugf("UPDATE:\n%s(%v)", query, i)
		_, err = tx.NamedExec(query,
			map[string]interface{}{
				"WooProductID": i.WooProductID,
				"MsHref":       i.MsHref,
				"MediaID":      i.MediaID,
				"Pos":          i.Pos,
			})
		if err != nil {
			return errors.Wrapf(err, "failed UPDATE to dbsqlite; query:\n%s(%v)", query, i)
		}
	}

	err = tx.Commit()
	if err != nil {
		return errors.Wrapf(err, "failed Commit to dbsqlite; query:\n%s(%v)", query, i)
	}

	logger.Debug("Строка сохранена успешно")
	return nil
}

func (i *Image) DeleteByWooProductID(db *sqlx.DB) error {
	logger := logging.GetLogger()
	logger.Debug("Start Image.DeleteByWooProductID")
	defer logger.Debug("End Image.DeleteByWooProductID")

	if i.WooProductID == 0 {
		return errors.New("не указан WooProductID")
	}

	query := "DELETE FROM Image WHERE WooProductID=$1;"
	db.MustExec(query, i.WooProductID)
	logger.Debugf("DELETE:\n%s(%d)", query, i.WooProductID)
	return nil
}
