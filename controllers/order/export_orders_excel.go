package orderControllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/tealeg/xlsx"
	"gorm.io/gorm"

	"github.com/snackbasket/storefront-api/models"
)

// GET /orders/export
func ExportOrdersToExcel(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var orders []models.Order
		if err := db.Preload("Items").Order("created_at desc").Find(&orders).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
			return
		}

		file := xlsx.NewFile()
		sheet, err := file.AddSheet("Orders")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel sheet"})
			return
		}

		// Header row
		headers := []string{
			"Ref", "Customer", "Email", "Phone", "City", "State", "Pincode",
			"Items", "Subtotal", "Tax", "Shipping", "Total",
			"Status", "PaymentStatus", "PaymentMethod", "CreatedAt",
		}
		headerRow := sheet.AddRow()
		for _, h := range headers {
			headerRow.AddCell().SetValue(h)
		}

		// Data rows
		for _, o := range orders {
			row := sheet.AddRow()

			row.AddCell().SetValue(o.Ref)
			row.AddCell().SetValue(o.CustomerName)
			row.AddCell().SetValue(o.Email)
			row.AddCell().SetValue(o.Phone)
			row.AddCell().SetValue(o.City)
			row.AddCell().SetValue(o.State)
			row.AddCell().SetValue(o.Pincode)

			var lines []string
			for _, item := range o.Items {
				lines = append(lines, item.Title+" x"+strconv.Itoa(item.Quantity))
			}
			row.AddCell().SetValue(strings.Join(lines, "; "))

			row.AddCell().SetValue(o.Subtotal)
			row.AddCell().SetValue(o.TaxAmount)
			row.AddCell().SetValue(o.ShippingCost)
			row.AddCell().SetValue(o.TotalAmount)
			row.AddCell().SetValue(string(o.Status))
			row.AddCell().SetValue(string(o.PaymentStatus))
			row.AddCell().SetValue(o.PaymentMethod)
			row.AddCell().SetValue(o.CreatedAt.Format("2006-01-02 15:04:05"))
		}

		c.Header("Content-Disposition", "attachment; filename=orders.xlsx")
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Transfer-Encoding", "binary")
		c.Header("Expires", "0")

		if err := file.Write(c.Writer); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to write Excel file"})
			return
		}
	}
}
