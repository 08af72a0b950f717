package superstore

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const testHeader = "Row ID,Order ID,Order Date,Ship Date,Ship Mode," +
	"Customer ID,Customer Name,Segment," +
	"Country,City,State,Postal Code,Region," +
	"Product ID,Category,Sub-Category,Product Name," +
	"Sales,Quantity,Discount,Profit"

func testRow(orderID, orderDate, productID string) string {
	return strings.Join([]string{
		"1", orderID, orderDate, "6/18/2023", "Standard Class",
		"AA-10001", "Alice Adams", "Consumer",
		"United States", "Seattle", "Washington", "98103", "West",
		productID, "Furniture", "Chairs", "Test Chair",
		"100.50", "2", "0.1", "10.25",
	}, ",")
}

func TestReadParsesRows(t *testing.T) {
	input := testHeader + "\n" +
		testRow("US-2023-100001", "6/15/2023", "FUR-CH-1001") + "\n" +
		testRow("US-2023-100002", "2023-07-01", "FUR-CH-1002")

	items, err := Read(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(items))
	}

	item := items[0]
	if item.OrderID != "US-2023-100001" {
		t.Errorf("OrderID mismatch: %s", item.OrderID)
	}
	want := time.Date(2023, 6, 15, 0, 0, 0, 0, time.UTC)
	if !item.OrderDate.Equal(want) {
		t.Errorf("OrderDate mismatch: %v", item.OrderDate)
	}
	if item.Sales != 100.50 {
		t.Errorf("Sales mismatch: %f", item.Sales)
	}
	if item.Quantity != 2 {
		t.Errorf("Quantity mismatch: %d", item.Quantity)
	}
	if item.SubCategory != "Chairs" {
		t.Errorf("SubCategory mismatch: %s", item.SubCategory)
	}
	if item.PostalCode != "98103" {
		t.Errorf("PostalCode mismatch: %s", item.PostalCode)
	}

	// ISO dates parse too.
	want2 := time.Date(2023, 7, 1, 0, 0, 0, 0, time.UTC)
	if !items[1].OrderDate.Equal(want2) {
		t.Errorf("ISO OrderDate mismatch: %v", items[1].OrderDate)
	}
}

func TestReadDropsUnparseableRows(t *testing.T) {
	bad := strings.Replace(testRow("US-2023-100002", "6/15/2023", "FUR-CH-1002"),
		"100.50", "not-a-number", 1)
	input := testHeader + "\n" +
		testRow("US-2023-100001", "6/15/2023", "FUR-CH-1001") + "\n" +
		bad + "\n" +
		testRow("US-2023-100003", "not-a-date", "FUR-CH-1003") + "\n" +
		testRow("US-2023-100004", "6/16/2023", "FUR-CH-1004")

	items, err := Read(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("Expected 2 items after dropping bad rows, got %d", len(items))
	}
	if items[0].OrderID != "US-2023-100001" || items[1].OrderID != "US-2023-100004" {
		t.Errorf("Wrong rows survived: %s, %s", items[0].OrderID, items[1].OrderID)
	}
}

func TestReadMissingColumn(t *testing.T) {
	input := "Order ID,Order Date\nUS-2023-1,6/15/2023"

	_, err := Read(strings.NewReader(input))
	if err == nil {
		t.Fatal("Expected error for missing columns, got nil")
	}
	if !strings.Contains(err.Error(), "missing column") {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestReadEmptyInput(t *testing.T) {
	_, err := Read(strings.NewReader(""))
	if err == nil {
		t.Fatal("Expected error for empty input, got nil")
	}
}

func TestReadFileWindows1252(t *testing.T) {
	// "Muñoz" with ñ as the single windows-1252 byte 0xF1.
	row := strings.Replace(testRow("US-2023-100001", "6/15/2023", "FUR-CH-1001"),
		"Alice Adams", "Alice Mu\xf1oz", 1)
	content := testHeader + "\n" + row

	path := filepath.Join(t.TempDir(), "source.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	items, err := ReadFile(path, "windows-1252")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(items))
	}
	if items[0].CustomerName != "Alice Muñoz" {
		t.Errorf("Expected decoded name 'Alice Muñoz', got %q", items[0].CustomerName)
	}
}

func TestReadFileUTF8(t *testing.T) {
	content := testHeader + "\n" + testRow("US-2023-100001", "6/15/2023", "FUR-CH-1001")

	path := filepath.Join(t.TempDir(), "source.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	items, err := ReadFile(path, "utf-8")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(items))
	}
}

func TestReadFileNotFound(t *testing.T) {
	_, err := ReadFile("/nonexistent/source.csv", "utf-8")
	if err == nil {
		t.Fatal("Expected error for missing file, got nil")
	}
}
