package store

// Token queries.
const (
	queryGetToken = `
		SELECT user_id, access_token, refresh_token, expires_at, updated_at
		FROM oauth_tokens
		WHERE user_id = $1`

	queryUpsertToken = `
		INSERT INTO oauth_tokens (user_id, access_token, refresh_token, expires_at, updated_at)
		VALUES (@user_id, @access_token, @refresh_token, @expires_at, now())
		ON CONFLICT (user_id) DO UPDATE SET
			access_token  = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			expires_at    = EXCLUDED.expires_at,
			updated_at    = now()
		RETURNING updated_at`

	queryDeleteToken = `DELETE FROM oauth_tokens WHERE user_id = $1`

	queryListExpiringTokens = `
		SELECT user_id, access_token, refresh_token, expires_at, updated_at
		FROM oauth_tokens
		WHERE refresh_token <> '' AND expires_at > $1 AND expires_at < $2
		ORDER BY expires_at`
)

// SKU settings queries.
const (
	queryGetSkuSettings = `
		SELECT user_id, counter, prefix
		FROM sku_settings
		WHERE user_id = $1`

	queryUpsertSkuSettings = `
		INSERT INTO sku_settings (user_id, counter, prefix)
		VALUES (@user_id, @counter, @prefix)
		ON CONFLICT (user_id) DO UPDATE SET
			counter = GREATEST(sku_settings.counter, EXCLUDED.counter),
			prefix  = EXCLUDED.prefix`

	queryIncrementSkuCounter = `
		INSERT INTO sku_settings (user_id, counter)
		VALUES ($1, 2)
		ON CONFLICT (user_id) DO UPDATE SET counter = sku_settings.counter + 1
		RETURNING counter`
)

// Draft listing queries.
const (
	queryCreateDraft = `
		INSERT INTO draft_listings (
			id, user_id, title, description, price, currency, condition,
			image_urls, category_id, upc, product_data
		) VALUES (
			@id, @user_id, @title, @description, @price, @currency, @condition,
			@image_urls, @category_id, @upc, @product_data
		)
		RETURNING created_at, updated_at`

	queryGetDraft = `
		SELECT id, user_id, title, description, price, currency, condition,
		       image_urls, category_id, upc, product_data, created_at, updated_at
		FROM draft_listings
		WHERE user_id = $1 AND id = $2`

	queryListDrafts = `
		SELECT id, user_id, title, description, price, currency, condition,
		       image_urls, category_id, upc, product_data, created_at, updated_at
		FROM draft_listings
		WHERE user_id = $1
		ORDER BY updated_at DESC`

	queryUpdateDraft = `
		UPDATE draft_listings SET
			title = @title, description = @description, price = @price,
			currency = @currency, condition = @condition, image_urls = @image_urls,
			category_id = @category_id, upc = @upc, product_data = @product_data,
			updated_at = now()
		WHERE user_id = @user_id AND id = @id
		RETURNING updated_at`

	queryDeleteDraft = `DELETE FROM draft_listings WHERE user_id = $1 AND id = $2`
)

// Business policy queries.
const (
	queryGetPolicies = `
		SELECT user_id, marketplace_id, payment_policy_id, return_policy_id, fulfillment_policy_id
		FROM business_policies
		WHERE user_id = $1`

	queryUpsertPolicies = `
		INSERT INTO business_policies (
			user_id, marketplace_id, payment_policy_id, return_policy_id, fulfillment_policy_id
		) VALUES (
			@user_id, @marketplace_id, @payment_policy_id, @return_policy_id, @fulfillment_policy_id
		)
		ON CONFLICT (user_id) DO UPDATE SET
			marketplace_id        = EXCLUDED.marketplace_id,
			payment_policy_id     = EXCLUDED.payment_policy_id,
			return_policy_id      = EXCLUDED.return_policy_id,
			fulfillment_policy_id = EXCLUDED.fulfillment_policy_id`
)

// Banned keyword queries.
const (
	queryListBannedKeywords = `
		SELECT keyword FROM banned_keywords
		WHERE user_id = $1
		ORDER BY keyword`

	queryAddBannedKeyword = `
		INSERT INTO banned_keywords (user_id, keyword)
		VALUES ($1, lower($2))
		ON CONFLICT DO NOTHING`

	queryRemoveBannedKeyword = `
		DELETE FROM banned_keywords WHERE user_id = $1 AND keyword = lower($2)`
)

// Per-user config queries.
const (
	queryGetDiscountSettings = `
		SELECT user_id, enabled, percent_off, min_price_floor
		FROM discount_settings
		WHERE user_id = $1`

	queryUpsertDiscountSettings = `
		INSERT INTO discount_settings (user_id, enabled, percent_off, min_price_floor)
		VALUES (@user_id, @enabled, @percent_off, @min_price_floor)
		ON CONFLICT (user_id) DO UPDATE SET
			enabled         = EXCLUDED.enabled,
			percent_off     = EXCLUDED.percent_off,
			min_price_floor = EXCLUDED.min_price_floor`

	queryGetDescriptionOverride = `
		SELECT user_id, enabled, template
		FROM description_overrides
		WHERE user_id = $1`

	queryUpsertDescriptionOverride = `
		INSERT INTO description_overrides (user_id, enabled, template)
		VALUES (@user_id, @enabled, @template)
		ON CONFLICT (user_id) DO UPDATE SET
			enabled  = EXCLUDED.enabled,
			template = EXCLUDED.template`
)
