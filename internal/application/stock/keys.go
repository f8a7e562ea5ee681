package stock

import "fmt"

// Claves de caché. La clave puntual se invalida de forma síncrona en cada
// mutación del SKU; la de low-stock expira solo por TTL (recalcular el scan
// completo en cada mutación sería un desperdicio, ventana de staleness
// aceptada de hasta AggregateTTL).
// PointKey es exportada para que el listener de invalidación entre
// instancias borre la misma clave que escribe el camino de lectura.
func PointKey(warehouseID, sku string) string {
	return fmt.Sprintf("stock:%s:%s", warehouseID, sku)
}

func lowStockKey(warehouseID string, threshold int64) string {
	if warehouseID == "" {
		return fmt.Sprintf("stock:low-stock:%d", threshold)
	}
	return fmt.Sprintf("stock:low-stock:%s:%d", warehouseID, threshold)
}
