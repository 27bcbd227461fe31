package sync

import (
	"WooWithMoysklad/internal/database/model/categmap"
	"WooWithMoysklad/internal/database/model/imagemap"
	"WooWithMoysklad/internal/database/model/productmap"
	modelsMSAPI "WooWithMoysklad/internal/msapi/models"
	"WooWithMoysklad/internal/stopflag"
	modelsWOOAPI "WooWithMoysklad/internal/wooapi/models"
	"WooWithMoysklad/pkg/logging"
	"database/sql"
	"fmt"

	"github.com/pkg/errors"
)

// processProduct - синхронизация одного товара МойСклад в Woo.
// Связка ищется сперва по ID МойСклад, затем по SKU, восстановленная
// по SKU связка сохраняется в базу.
func (s *Syncer) processProduct(p *modelsMSAPI.Product, stats *Stats) error {

	logger := logging.GetLogger()
	logger.Debugf("processProduct, Name:%s, ID:%s", p.Name, p.ID)

	if p.IsService() {
		logger.Debugf("товар является услугой, пропускаем, Name:%s", p.Name)
		stats.Skipped++
		return nil
	}

	sku := p.Article
	if sku == "" {
		sku = p.Code
	}

	wooID, err := s.lookupWooID(p.ID, sku, p.Name)
	if err != nil {
		return errors.Wrap(err, "failed in lookupWooID()")
	}

	product := s.prepareProductData(p, sku, wooID == 0)

	if wooID != 0 {
		product.ID = wooID
		_, err = s.wooapi.ProductUpdate(product)
		if err != nil {
			return errors.Wrapf(err, "failed in ProductUpdate(), WooID:%d", wooID)
		}
		stats.Updated++
	} else {
		created, err := s.wooapi.ProductAdd(product)
		if err != nil {
			return errors.Wrap(err, "failed in ProductAdd()")
		}
		wooID = created.ID
		stats.Created++
	}

	mapping := productmap.ProductMapping{
		MsID:  p.ID,
		WooID: wooID,
		Sku:   sql.NullString{String: sku, Valid: sku != ""},
		Name:  sql.NullString{String: p.Name, Valid: true},
	}
	err = mapping.Save(s.db)
	if err != nil {
		return errors.Wrap(err, "failed in ProductMapping.Save()")
	}

	if s.cfg.PRODUCTSYNC.SyncImages == 1 && p.Images != nil && p.Images.Meta.Href != "" {
		err = s.syncImages(wooID, p)
		if err != nil {
			if errors.Is(err, stopflag.ErrStopped) {
				return stopflag.ErrStopped
			}
			logger.Errorf("ошибка при синхронизации картинок, Name:%s, error: %v", p.Name, err)
		}
	}

	if s.cfg.PRODUCTSYNC.SyncModifications == 1 {
		err = s.syncVariants(wooID, p, sku)
		if err != nil {
			if errors.Is(err, stopflag.ErrStopped) {
				return stopflag.ErrStopped
			}
			logger.Errorf("ошибка при синхронизации модификаций, Name:%s, error: %v", p.Name, err)
		}
	}

	return nil
}

// lookupWooID ищет ID товара Woo: сперва в базе по ID МойСклад, потом в Woo по SKU
func (s *Syncer) lookupWooID(msID, sku, name string) (int, error) {

	logger := logging.GetLogger()

	mapping := productmap.ProductMapping{MsID: msID}
	mappingsInDb, err := mapping.SelectByMsID(s.db)
	if err != nil {
		return 0, errors.Wrap(err, "failed in ProductMapping.SelectByMsID()")
	}
	if len(mappingsInDb) > 0 {
		return mappingsInDb[0].WooID, nil
	}

	if sku == "" {
		return 0, nil
	}

	product, err := s.wooapi.ProductGetBySku(sku)
	if err != nil {
		return 0, errors.Wrapf(err, "failed in ProductGetBySku(), Sku:%s", sku)
	}
	if product == nil {
		return 0, nil
	}

	logger.Infof("связка восстановлена по SKU, Name:%s, Sku:%s, WooID:%d", name, sku, product.ID)
	return product.ID, nil
}

func (s *Syncer) prepareProductData(p *modelsMSAPI.Product, sku string, isNew bool) *modelsWOOAPI.Product {

	product := &modelsWOOAPI.Product{
		Sku:          sku,
		RegularPrice: s.priceFor(p.SalePrices),
		MetaData: []modelsWOOAPI.MetaData{
			{Key: modelsWOOAPI.META_MS_PRODUCT_ID, Value: p.ID},
		},
	}

	if isNew || s.cfg.PRODUCTSYNC.SyncName == 1 {
		product.Name = p.Name
	}
	if s.cfg.PRODUCTSYNC.SyncDescription == 1 {
		product.Description = p.Description
	}

	if categoryWooID := s.categoryWooID(p.ProductFolder); categoryWooID != 0 {
		product.Categories = []*modelsWOOAPI.Categories{{Id: categoryWooID}}
	}

	for i := range p.Attributes {
		if p.Attributes[i].Name == modelsMSAPI.ATTRIBUTE_PRODUCT_TYPE {
			continue
		}
		value := p.Attributes[i].ValueString()
		if value == "" {
			continue
		}
		product.Attributes = append(product.Attributes, &modelsWOOAPI.ProductAttribute{
			Name:    p.Attributes[i].Name,
			Visible: true,
			Options: []string{value},
		})
	}

	return product
}

// priceFor - цена в рублях из копеек, по типу цены из конфига либо первая
func (s *Syncer) priceFor(salePrices []modelsMSAPI.SalePrice) string {

	if len(salePrices) == 0 {
		return ""
	}

	kopecks := salePrices[0].Value
	if priceTypeID := s.cfg.MOYSKLAD.PriceTypeID; priceTypeID != "" {
		for i := range salePrices {
			if salePrices[i].PriceType != nil && salePrices[i].PriceType.ID == priceTypeID {
				kopecks = salePrices[i].Value
				break
			}
		}
	}

	return fmt.Sprintf("%.2f", float64(kopecks)/100)
}

// categoryWooID - ID категории Woo для группы товара, 0 если связки нет.
// Отрицательные результаты тоже кэшируются на время прогона.
func (s *Syncer) categoryWooID(folder *modelsMSAPI.MetaRef) int {

	logger := logging.GetLogger()

	if folder == nil || folder.Meta.Href == "" {
		return 0
	}
	msID := modelsMSAPI.IDFromHref(folder.Meta.Href, "productfolder")
	if msID == "" {
		return 0
	}

	if wooID, found := s.cache.GetWooID(msID); found {
		return wooID
	}
	if s.cache.IsNotFound(msID) {
		return 0
	}

	mapping := categmap.CategoryMapping{MsID: msID}
	mappingsInDb, err := mapping.SelectByMsID(s.db)
	if err != nil {
		logger.Errorf("failed in CategoryMapping.SelectByMsID(), MsID:%s, error: %v", msID, err)
		return 0
	}
	if len(mappingsInDb) > 0 {
		s.cache.SetWooID(msID, mappingsInDb[0].WooID)
		return mappingsInDb[0].WooID
	}

	s.cache.SetNotFound(msID)
	return 0
}

// syncImages докачивает недостающие картинки товара в медиатеку WP.
// Уже загруженные определяются по ссылке МойСклад в базе.
func (s *Syncer) syncImages(wooID int, p *modelsMSAPI.Product) error {

	logger := logging.GetLogger()
	logger.Debugf("syncImages, Name:%s, WooID:%d", p.Name, wooID)

	images, err := s.msapi.ImageList(p.Images.Meta.Href)
	if err != nil {
		return errors.Wrap(err, "failed in ImageList()")
	}
	if len(images) == 0 {
		return nil
	}

	if s.cfg.PRODUCTSYNC.SyncAllImages != 1 {
		images = images[:1]
	}

	hrefs := make(map[string]bool, len(images))
	for _, image := range images {
		hrefs[image.Href()] = true
	}

	// состав картинок в МойСклад поменялся - старые связки сбрасываем,
	// галерея соберется заново
	savedRecord := imagemap.Image{WooProductID: wooID}
	savedImages, err := savedRecord.SelectByWooProductID(s.db)
	if err != nil {
		return errors.Wrap(err, "failed in Image.SelectByWooProductID()")
	}
	for _, saved := range savedImages {
		if !hrefs[saved.MsHref] {
			logger.Infof("картинки товара изменились, связки сброшены, WooID:%d", wooID)
			err = savedRecord.DeleteByWooProductID(s.db)
			if err != nil {
				return errors.Wrap(err, "failed in Image.DeleteByWooProductID()")
			}
			break
		}
	}

	var productImages []modelsWOOAPI.ProductImage
	changed := false

	for pos, image := range images {
		if s.stop.Requested() {
			return stopflag.ErrStopped
		}

		href := image.Href()
		record := imagemap.Image{WooProductID: wooID, MsHref: href}
		imagesInDb, err := record.SelectByWooProductIDAndMsHref(s.db)
		if err != nil {
			return errors.Wrap(err, "failed in Image.SelectByWooProductIDAndMsHref()")
		}

		if len(imagesInDb) > 0 && imagesInDb[0].MediaID.Valid {
			productImages = append(productImages, modelsWOOAPI.ProductImage{Id: int(imagesInDb[0].MediaID.Int32)})
			continue
		}

		data, filename, err := s.msapi.DownloadImage(href)
		if err != nil {
			return errors.Wrapf(err, "failed in DownloadImage(), href:%s", href)
		}
		if filename == "" {
			filename = image.Filename
		}

		media, err := s.wooapi.MediaUpload(filename, mimeTypeByFilename(filename), data)
		if err != nil {
			return errors.Wrapf(err, "failed in MediaUpload(), filename:%s", filename)
		}

		record.MediaID = sql.NullInt32{Int32: int32(media.Id), Valid: true}
		record.Pos = sql.NullInt32{Int32: int32(pos), Valid: true}
		err = record.Save(s.db)
		if err != nil {
			return errors.Wrap(err, "failed in Image.Save()")
		}

		productImages = append(productImages, modelsWOOAPI.ProductImage{Id: media.Id})
		changed = true
	}

	if !changed {
		return nil
	}

	// первая картинка становится главной, остальные уходят в галерею
	_, err = s.wooapi.ProductUpdate(&modelsWOOAPI.Product{
		ID:     wooID,
		Images: productImages,
		MetaData: []modelsWOOAPI.MetaData{
			{Key: modelsWOOAPI.META_MS_IMAGE_URL, Value: images[0].Href()},
		},
	})
	if err != nil {
		return errors.Wrapf(err, "failed in ProductUpdate(), WooID:%d", wooID)
	}

	return nil
}

// syncVariants - развертка модификаций МойСклад в вариации Woo.
// Товар переводится в variable с объединенными характеристиками.
func (s *Syncer) syncVariants(wooID int, p *modelsMSAPI.Product, parentSku string) error {

	logger := logging.GetLogger()
	logger.Debugf("syncVariants, Name:%s, WooID:%d", p.Name, wooID)

	variants, err := s.msapi.VariantList(p.ID)
	if err != nil {
		return errors.Wrap(err, "failed in VariantList()")
	}
	if len(variants) == 0 {
		return nil
	}

	attributes := variantAttributes(variants)

	_, err = s.wooapi.ProductUpdate(&modelsWOOAPI.Product{
		ID:         wooID,
		Type:       "variable",
		Attributes: attributes,
	})
	if err != nil {
		return errors.Wrapf(err, "failed in ProductUpdate(), WooID:%d", wooID)
	}

	existing, err := s.wooapi.ProductVariationList(wooID)
	if err != nil {
		return errors.Wrapf(err, "failed in ProductVariationList(), WooID:%d", wooID)
	}
	existingByMsID := make(map[string]*modelsWOOAPI.ProductVariation, len(existing))
	for _, variation := range existing {
		if msVariantID := variation.MsVariantID(); msVariantID != "" {
			existingByMsID[msVariantID] = variation
		}
	}

	for _, variant := range variants {
		if s.stop.Requested() {
			return stopflag.ErrStopped
		}

		variationSku := variant.Code
		if variationSku == "" && parentSku != "" {
			variationSku = fmt.Sprintf("%s-%s", parentSku, variant.ID)
		}

		variation := &modelsWOOAPI.ProductVariation{
			Sku:          variationSku,
			RegularPrice: s.priceFor(variant.SalePrices),
			MetaData: []modelsWOOAPI.MetaData{
				{Key: modelsWOOAPI.META_MS_VARIANT_ID, Value: variant.ID},
			},
		}
		for i := range variant.Characteristics {
			variation.Attributes = append(variation.Attributes, modelsWOOAPI.VariationAttribute{
				Name:   variant.Characteristics[i].Name,
				Option: variant.Characteristics[i].Value,
			})
		}

		if found, ok := existingByMsID[variant.ID]; ok {
			variation.ID = found.ID
			_, err = s.wooapi.ProductVariationUpdate(wooID, variation)
			if err != nil {
				return errors.Wrapf(err, "failed in ProductVariationUpdate(), WooID:%d, VariationID:%d", wooID, found.ID)
			}
		} else {
			_, err = s.wooapi.ProductVariationAdd(wooID, variation)
			if err != nil {
				return errors.Wrapf(err, "failed in ProductVariationAdd(), WooID:%d", wooID)
			}
		}
	}

	return nil
}

// variantAttributes собирает объединение характеристик всех модификаций
func variantAttributes(variants []*modelsMSAPI.Variant) []*modelsWOOAPI.ProductAttribute {

	var names []string
	options := make(map[string][]string)

	for _, variant := range variants {
		for i := range variant.Characteristics {
			name := variant.Characteristics[i].Name
			value := variant.Characteristics[i].Value
			if _, found := options[name]; !found {
				names = append(names, name)
			}
			duplicate := false
			for _, existing := range options[name] {
				if existing == value {
					duplicate = true
					break
				}
			}
			if !duplicate {
				options[name] = append(options[name], value)
			}
		}
	}

	attributes := make([]*modelsWOOAPI.ProductAttribute, 0, len(names))
	for pos, name := range names {
		attributes = append(attributes, &modelsWOOAPI.ProductAttribute{
			Name:      name,
			Position:  pos,
			Visible:   true,
			Variation: true,
			Options:   options[name],
		})
	}
	return attributes
}

func mimeTypeByFilename(filename string) string {
	for i := len(filename) - 1; i >= 0; i-- {
		if filename[i] == '.' {
			switch filename[i+1:] {
			case "png":
				return "image/png"
			case "gif":
				return "image/gif"
			case "webp":
				return "image/webp"
			}
			break
		}
	}
	return "image/jpeg"
}
