package integration

import (
	"fmt"
	"net/url"

	"github.com/cucumber/godog"
)

func (s *StepsContext) registerProductSteps(sc *godog.ScenarioContext) {
	sc.Step(`^I add a product titled "([^"]*)" priced "([^"]*)" with stock "([^"]*)"$`, s.iAddAProduct)
	sc.Step(`^I update product (\d+) with price "([^"]*)"$`, s.iUpdateProductPrice)
	sc.Step(`^I delete product (\d+)$`, s.iDeleteProduct)
	sc.Step(`^the catalog should have received "([^"]*)"$`, s.theCatalogShouldHaveReceived)
}

func productForm(title, price, stock string) url.Values {
	return url.Values{
		"title":    {title},
		"price":    {price},
		"stock":    {stock},
		"category": {"beauty"},
	}
}

func (s *StepsContext) iAddAProduct(title, price, stock string) error {
	return s.post("/products", productForm(title, price, stock))
}

func (s *StepsContext) iUpdateProductPrice(id int, price string) error {
	return s.post(fmt.Sprintf("/products/%d", id), productForm(fmt.Sprintf("Product %d", id), price, "5"))
}

func (s *StepsContext) iDeleteProduct(id int) error {
	return s.post(fmt.Sprintf("/products/%d/delete", id), url.Values{})
}

func (s *StepsContext) theCatalogShouldHaveReceived(request string) error {
	for _, r := range s.tc.Catalog.Requests() {
		if r == request {
			return nil
		}
	}
	return fmt.Errorf("catalog did not receive %q; got %v", request, s.tc.Catalog.Requests())
}
