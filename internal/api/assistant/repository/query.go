package assistantRepository

const (
	queryDeleteKnowledgeByProperty = `
		DELETE FROM knowledge_documents WHERE property_id = :property_id
	`

	queryInsertKnowledge = `
		INSERT INTO knowledge_documents (
			id, property_id, content, category, position, created_at
		) VALUES (
			:id, :property_id, :content, :category, :position, :created_at
		)
	`

	queryGetKnowledgeByProperty = `
		SELECT id, property_id, content, category, position, created_at
		FROM knowledge_documents
		WHERE property_id = :property_id
		ORDER BY position ASC
	`

	queryGetAllKnowledge = `
		SELECT id, property_id, content, category, position, created_at
		FROM knowledge_documents
		ORDER BY property_id ASC, position ASC
	`

	queryGetPropertyByID = `
		SELECT
			id,
			COALESCE(title, '') AS title,
			COALESCE(address, '') AS address,
			COALESCE(city, '') AS city,
			COALESCE(state, '') AS state,
			COALESCE(category, '') AS category,
			COALESCE(price_per_night, 0) AS price_per_night,
			COALESCE(bedrooms, 0) AS bedrooms,
			COALESCE(bathrooms, 0) AS bathrooms,
			COALESCE(max_guests, 0) AS max_guests,
			COALESCE(rating, 0) AS rating,
			COALESCE(amenities, '') AS amenities,
			COALESCE(check_in_time, '') AS check_in_time,
			COALESCE(check_out_time, '') AS check_out_time,
			COALESCE(description, '') AS description,
			COALESCE(cancellation_policy, '') AS cancellation_policy,
			COALESCE(house_rules, '') AS house_rules,
			COALESCE(host_phone, '') AS host_phone
		FROM properties
		WHERE id = :id
	`

	queryCreateAssistantQuery = `
		INSERT INTO assistant_queries (
			id, channel, property_id, utterance, intent, documents_found,
			confidence, escalate, success, created_at
		) VALUES (
			:id, :channel, :property_id, :utterance, :intent, :documents_found,
			:confidence, :escalate, :success, :created_at
		)
	`

	queryReportTotals = `
		SELECT
			COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN escalate THEN 1 ELSE 0 END), 0) AS escalated,
			COALESCE(SUM(CASE WHEN NOT success AND NOT escalate THEN 1 ELSE 0 END), 0) AS fallbacks
		FROM assistant_queries
		WHERE created_at >= :since
	`

	queryReportByIntent = `
		SELECT intent, COUNT(*) AS total
		FROM assistant_queries
		WHERE created_at >= :since
		GROUP BY intent
		ORDER BY total DESC, intent ASC
	`
)
