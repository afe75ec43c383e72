package source

// Dialect holds the four aggregation queries written for one SQL dialect.
//
// All dialects compute the same columns:
//
//	revenue           = ROUND(quantity * unit_price * (1 - discount), 2)
//	profit            = ROUND(revenue - quantity * cost_price, 2)
//	profit_margin_pct = ROUND((net unit price - cost_price) / cost_price * 100, 2)
//
// The customer queries inner-join orders and items, so only customers with at
// least one order appear, and divide by NULLIF(order count, 0) so an empty
// group yields NULL instead of an error. The RFM query takes the reference date
// as its single bind parameter.
type Dialect struct {
	Name               string
	SalesFact          string
	CustomerCLV        string
	RFMSegmentation    string
	ProductPerformance string
}

func (d Dialect) query(table, referenceDate string) (string, []any) {
	switch table {
	case SalesFact:
		return d.SalesFact, nil
	case CustomerCLV:
		return d.CustomerCLV, nil
	case RFMSegmentation:
		return d.RFMSegmentation, []any{referenceDate}
	case ProductPerformance:
		return d.ProductPerformance, nil
	}
	return "", nil
}

// MySQL is the reference dialect.
var MySQL = Dialect{
	Name: "mysql",
	SalesFact: `
SELECT
    o.order_id, o.order_date, o.ship_date,
    o.ship_mode, o.region,
    YEAR(o.order_date)                                          AS order_year,
    MONTH(o.order_date)                                         AS order_month,
    MONTHNAME(o.order_date)                                     AS month_name,
    QUARTER(o.order_date)                                       AS order_quarter,
    DATEDIFF(o.ship_date, o.order_date)                         AS shipping_days,
    c.customer_id, c.customer_name, c.gender, c.age,
    c.city, c.state, c.segment,
    p.product_id, p.product_name, p.category,
    p.sub_category, p.brand, p.cost_price,
    oi.quantity,
    oi.unit_price                                               AS selling_price,
    oi.discount,
    ROUND(oi.unit_price * (1 - oi.discount), 2)                 AS net_price,
    ROUND(oi.quantity * oi.unit_price * (1 - oi.discount), 2)   AS revenue,
    ROUND(oi.quantity * p.cost_price, 2)                        AS total_cost,
    ROUND((oi.quantity * oi.unit_price * (1 - oi.discount))
          - (oi.quantity * p.cost_price), 2)                    AS profit,
    ROUND(((oi.unit_price * (1 - oi.discount)) - p.cost_price)
          / p.cost_price * 100, 2)                              AS profit_margin_pct,
    CASE WHEN r.order_id IS NOT NULL
         THEN 'Returned' ELSE 'Completed' END                   AS order_status
FROM orders o
JOIN customers c    ON o.customer_id = c.customer_id
JOIN order_items oi ON o.order_id    = oi.order_id
JOIN products p     ON oi.product_id = p.product_id
LEFT JOIN returns r ON o.order_id    = r.order_id
ORDER BY o.order_date`,

	CustomerCLV: `
SELECT
    c.customer_id, c.customer_name, c.segment,
    c.city, c.state, c.gender, c.age,
    COUNT(DISTINCT o.order_id)                                       AS total_orders,
    ROUND(SUM(oi.quantity * oi.unit_price * (1 - oi.discount)), 2)   AS total_revenue,
    ROUND(AVG(oi.quantity * oi.unit_price * (1 - oi.discount)), 2)   AS avg_order_value,
    MIN(o.order_date)                                                AS first_order_date,
    MAX(o.order_date)                                                AS last_order_date,
    DATEDIFF(MAX(o.order_date), MIN(o.order_date))                   AS customer_lifespan_days,
    ROUND(SUM(oi.quantity * oi.unit_price * (1 - oi.discount))
          / NULLIF(COUNT(DISTINCT o.order_id), 0), 2)                AS clv_estimate
FROM customers c
JOIN orders o       ON c.customer_id = o.customer_id
JOIN order_items oi ON o.order_id    = oi.order_id
GROUP BY c.customer_id, c.customer_name, c.segment,
         c.city, c.state, c.gender, c.age
ORDER BY clv_estimate DESC`,

	RFMSegmentation: `
SELECT
    c.customer_id, c.customer_name, c.segment,
    DATEDIFF(?, MAX(o.order_date))                                   AS recency_days,
    COUNT(DISTINCT o.order_id)                                       AS frequency,
    ROUND(SUM(oi.quantity * oi.unit_price * (1 - oi.discount)), 2)   AS monetary
FROM customers c
JOIN orders o       ON c.customer_id = o.customer_id
JOIN order_items oi ON o.order_id    = oi.order_id
GROUP BY c.customer_id, c.customer_name, c.segment
ORDER BY monetary DESC`,

	ProductPerformance: `
SELECT
    p.product_id, p.product_name, p.category,
    p.sub_category, p.brand,
    SUM(oi.quantity)                                                  AS total_units_sold,
    ROUND(SUM(oi.quantity * oi.unit_price * (1 - oi.discount)), 2)    AS total_revenue,
    ROUND(SUM((oi.quantity * oi.unit_price * (1 - oi.discount))
              - (oi.quantity * p.cost_price)), 2)                     AS total_profit,
    ROUND(SUM((oi.quantity * oi.unit_price * (1 - oi.discount))
              - (oi.quantity * p.cost_price))
          / NULLIF(SUM(oi.quantity * oi.unit_price * (1 - oi.discount)), 0) * 100, 2)
                                                                      AS profit_margin_pct
FROM products p
JOIN order_items oi ON p.product_id = oi.product_id
GROUP BY p.product_id, p.product_name, p.category, p.sub_category, p.brand
ORDER BY total_revenue DESC`,
}

// Postgres mirrors MySQL with EXTRACT/TO_CHAR date parts, date subtraction
// for day differences and numeric casts so ROUND(x, 2) is defined.
var Postgres = Dialect{
	Name: "postgres",
	SalesFact: `
SELECT
    o.order_id, o.order_date, o.ship_date,
    o.ship_mode, o.region,
    EXTRACT(YEAR FROM o.order_date)::int                        AS order_year,
    EXTRACT(MONTH FROM o.order_date)::int                       AS order_month,
    TRIM(TO_CHAR(o.order_date, 'Month'))                        AS month_name,
    EXTRACT(QUARTER FROM o.order_date)::int                     AS order_quarter,
    (o.ship_date::date - o.order_date::date)                    AS shipping_days,
    c.customer_id, c.customer_name, c.gender, c.age,
    c.city, c.state, c.segment,
    p.product_id, p.product_name, p.category,
    p.sub_category, p.brand, p.cost_price,
    oi.quantity,
    oi.unit_price                                               AS selling_price,
    oi.discount,
    ROUND((oi.unit_price * (1 - oi.discount))::numeric, 2)               AS net_price,
    ROUND((oi.quantity * oi.unit_price * (1 - oi.discount))::numeric, 2) AS revenue,
    ROUND((oi.quantity * p.cost_price)::numeric, 2)                      AS total_cost,
    ROUND(((oi.quantity * oi.unit_price * (1 - oi.discount))
          - (oi.quantity * p.cost_price))::numeric, 2)                   AS profit,
    ROUND((((oi.unit_price * (1 - oi.discount)) - p.cost_price)
          / p.cost_price * 100)::numeric, 2)                             AS profit_margin_pct,
    CASE WHEN r.order_id IS NOT NULL
         THEN 'Returned' ELSE 'Completed' END                   AS order_status
FROM orders o
JOIN customers c    ON o.customer_id = c.customer_id
JOIN order_items oi ON o.order_id    = oi.order_id
JOIN products p     ON oi.product_id = p.product_id
LEFT JOIN returns r ON o.order_id    = r.order_id
ORDER BY o.order_date`,

	CustomerCLV: `
SELECT
    c.customer_id, c.customer_name, c.segment,
    c.city, c.state, c.gender, c.age,
    COUNT(DISTINCT o.order_id)                                                  AS total_orders,
    ROUND(SUM(oi.quantity * oi.unit_price * (1 - oi.discount))::numeric, 2)     AS total_revenue,
    ROUND(AVG(oi.quantity * oi.unit_price * (1 - oi.discount))::numeric, 2)     AS avg_order_value,
    MIN(o.order_date)                                                           AS first_order_date,
    MAX(o.order_date)                                                           AS last_order_date,
    (MAX(o.order_date)::date - MIN(o.order_date)::date)                         AS customer_lifespan_days,
    ROUND((SUM(oi.quantity * oi.unit_price * (1 - oi.discount))
          / NULLIF(COUNT(DISTINCT o.order_id), 0))::numeric, 2)                 AS clv_estimate
FROM customers c
JOIN orders o       ON c.customer_id = o.customer_id
JOIN order_items oi ON o.order_id    = oi.order_id
GROUP BY c.customer_id, c.customer_name, c.segment,
         c.city, c.state, c.gender, c.age
ORDER BY clv_estimate DESC NULLS LAST`,

	RFMSegmentation: `
SELECT
    c.customer_id, c.customer_name, c.segment,
    ($1::date - MAX(o.order_date)::date)                                        AS recency_days,
    COUNT(DISTINCT o.order_id)                                                  AS frequency,
    ROUND(SUM(oi.quantity * oi.unit_price * (1 - oi.discount))::numeric, 2)     AS monetary
FROM customers c
JOIN orders o       ON c.customer_id = o.customer_id
JOIN order_items oi ON o.order_id    = oi.order_id
GROUP BY c.customer_id, c.customer_name, c.segment
ORDER BY monetary DESC NULLS LAST`,

	ProductPerformance: `
SELECT
    p.product_id, p.product_name, p.category,
    p.sub_category, p.brand,
    SUM(oi.quantity)                                                             AS total_units_sold,
    ROUND(SUM(oi.quantity * oi.unit_price * (1 - oi.discount))::numeric, 2)      AS total_revenue,
    ROUND(SUM((oi.quantity * oi.unit_price * (1 - oi.discount))
              - (oi.quantity * p.cost_price))::numeric, 2)                       AS total_profit,
    ROUND((SUM((oi.quantity * oi.unit_price * (1 - oi.discount))
               - (oi.quantity * p.cost_price))
          / NULLIF(SUM(oi.quantity * oi.unit_price * (1 - oi.discount)), 0) * 100)::numeric, 2)
                                                                                 AS profit_margin_pct
FROM products p
JOIN order_items oi ON p.product_id = oi.product_id
GROUP BY p.product_id, p.product_name, p.category, p.sub_category, p.brand
ORDER BY total_revenue DESC NULLS LAST`,
}

// sqliteMonthName spells out the month of a TEXT date column.
const sqliteMonthName = `CASE strftime('%m', o.order_date)
        WHEN '01' THEN 'January'  WHEN '02' THEN 'February' WHEN '03' THEN 'March'
        WHEN '04' THEN 'April'    WHEN '05' THEN 'May'      WHEN '06' THEN 'June'
        WHEN '07' THEN 'July'     WHEN '08' THEN 'August'   WHEN '09' THEN 'September'
        WHEN '10' THEN 'October'  WHEN '11' THEN 'November' WHEN '12' THEN 'December'
    END`

// SQLite stores dates as ISO-8601 text; date parts come from strftime and day
// differences from julianday. Used for local snapshots of the store.
var SQLite = Dialect{
	Name: "sqlite",
	SalesFact: `
SELECT
    o.order_id, o.order_date, o.ship_date,
    o.ship_mode, o.region,
    CAST(strftime('%Y', o.order_date) AS INTEGER)               AS order_year,
    CAST(strftime('%m', o.order_date) AS INTEGER)               AS order_month,
    ` + sqliteMonthName + `                                     AS month_name,
    (CAST(strftime('%m', o.order_date) AS INTEGER) + 2) / 3     AS order_quarter,
    CAST(julianday(o.ship_date) - julianday(o.order_date) AS INTEGER) AS shipping_days,
    c.customer_id, c.customer_name, c.gender, c.age,
    c.city, c.state, c.segment,
    p.product_id, p.product_name, p.category,
    p.sub_category, p.brand, p.cost_price,
    oi.quantity,
    oi.unit_price                                               AS selling_price,
    oi.discount,
    ROUND(oi.unit_price * (1 - oi.discount), 2)                 AS net_price,
    ROUND(oi.quantity * oi.unit_price * (1 - oi.discount), 2)   AS revenue,
    ROUND(oi.quantity * p.cost_price, 2)                        AS total_cost,
    ROUND((oi.quantity * oi.unit_price * (1 - oi.discount))
          - (oi.quantity * p.cost_price), 2)                    AS profit,
    ROUND(((oi.unit_price * (1 - oi.discount)) - p.cost_price)
          / p.cost_price * 100, 2)                              AS profit_margin_pct,
    CASE WHEN r.order_id IS NOT NULL
         THEN 'Returned' ELSE 'Completed' END                   AS order_status
FROM orders o
JOIN customers c    ON o.customer_id = c.customer_id
JOIN order_items oi ON o.order_id    = oi.order_id
JOIN products p     ON oi.product_id = p.product_id
LEFT JOIN returns r ON o.order_id    = r.order_id
ORDER BY o.order_date`,

	CustomerCLV: `
SELECT
    c.customer_id, c.customer_name, c.segment,
    c.city, c.state, c.gender, c.age,
    COUNT(DISTINCT o.order_id)                                       AS total_orders,
    ROUND(SUM(oi.quantity * oi.unit_price * (1 - oi.discount)), 2)   AS total_revenue,
    ROUND(AVG(oi.quantity * oi.unit_price * (1 - oi.discount)), 2)   AS avg_order_value,
    MIN(o.order_date)                                                AS first_order_date,
    MAX(o.order_date)                                                AS last_order_date,
    CAST(julianday(MAX(o.order_date)) - julianday(MIN(o.order_date)) AS INTEGER)
                                                                     AS customer_lifespan_days,
    ROUND(SUM(oi.quantity * oi.unit_price * (1 - oi.discount))
          / NULLIF(COUNT(DISTINCT o.order_id), 0), 2)                AS clv_estimate
FROM customers c
JOIN orders o       ON c.customer_id = o.customer_id
JOIN order_items oi ON o.order_id    = oi.order_id
GROUP BY c.customer_id, c.customer_name, c.segment,
         c.city, c.state, c.gender, c.age
ORDER BY clv_estimate DESC`,

	RFMSegmentation: `
SELECT
    c.customer_id, c.customer_name, c.segment,
    CAST(julianday(?) - julianday(MAX(o.order_date)) AS INTEGER)     AS recency_days,
    COUNT(DISTINCT o.order_id)                                       AS frequency,
    ROUND(SUM(oi.quantity * oi.unit_price * (1 - oi.discount)), 2)   AS monetary
FROM customers c
JOIN orders o       ON c.customer_id = o.customer_id
JOIN order_items oi ON o.order_id    = oi.order_id
GROUP BY c.customer_id, c.customer_name, c.segment
ORDER BY monetary DESC`,

	ProductPerformance: `
SELECT
    p.product_id, p.product_name, p.category,
    p.sub_category, p.brand,
    SUM(oi.quantity)                                                  AS total_units_sold,
    ROUND(SUM(oi.quantity * oi.unit_price * (1 - oi.discount)), 2)    AS total_revenue,
    ROUND(SUM((oi.quantity * oi.unit_price * (1 - oi.discount))
              - (oi.quantity * p.cost_price)), 2)                     AS total_profit,
    ROUND(SUM((oi.quantity * oi.unit_price * (1 - oi.discount))
              - (oi.quantity * p.cost_price))
          / NULLIF(SUM(oi.quantity * oi.unit_price * (1 - oi.discount)), 0) * 100, 2)
                                                                      AS profit_margin_pct
FROM products p
JOIN order_items oi ON p.product_id = oi.product_id
GROUP BY p.product_id, p.product_name, p.category, p.sub_category, p.brand
ORDER BY total_revenue DESC`,
}
