package craigslist

import "testing"

const detailHTML = `
<html><body>
<h1 class="postingtitle">MacBook Pro 2023 - 16GB RAM</h1>
<span class="price">$1,200</span>
<section id="postingbody">
  QR Code Link to This Post
  Barely used, original box included.
</section>
<div class="gallery">
  <img src="https://images.craigslist.org/abc_300x300.jpg">
  <img src="https://images.craigslist.org/abc_300x300.jpg">
  <img src="https://images.craigslist.org/def_50x50c.jpg">
</div>
<p class="attrgroup">
  <span>condition: like new</span>
  <span>make / manufacturer: Apple</span>
  <span>no colon here</span>
</p>
<div class="postinginfo"><time class="date">2025-08-01</time></div>
<script>
  var map = map.init({ lat: 37.7749, lng: -122.4194 });
</script>
<div class="mapaddress">123 Market St</div>
</body></html>`

func TestExtractDetail(t *testing.T) {
	detail := extractDetail(parseFixture(t, detailHTML), "listing-3", "https://sfbay.craigslist.org/d/761.html")

	if detail.ID != "listing-3" {
		t.Errorf("ID = %q", detail.ID)
	}
	if detail.Title != "MacBook Pro 2023 - 16GB RAM" {
		t.Errorf("Title = %q", detail.Title)
	}
	if detail.Price != "$1,200" {
		t.Errorf("Price = %q", detail.Price)
	}
	if detail.Desc != "Barely used, original box included." {
		t.Errorf("Desc = %q; QR boilerplate not stripped", detail.Desc)
	}

	wantImages := []string{
		"https://images.craigslist.org/abc_600x450.jpg",
		"https://images.craigslist.org/def_600x450c.jpg",
	}
	if len(detail.Images) != len(wantImages) {
		t.Fatalf("Images = %v; want %v", detail.Images, wantImages)
	}
	for i, want := range wantImages {
		if detail.Images[i] != want {
			t.Errorf("Images[%d] = %q; want %q", i, detail.Images[i], want)
		}
	}

	if detail.Attributes["condition"] != "like new" {
		t.Errorf("condition attr = %q", detail.Attributes["condition"])
	}
	if detail.Attributes["make / manufacturer"] != "Apple" {
		t.Errorf("make attr = %q", detail.Attributes["make / manufacturer"])
	}
	if _, ok := detail.Attributes["no colon here"]; ok {
		t.Error("colon-less span should not become an attribute")
	}

	if detail.MapLat != 37.7749 || detail.MapLng != -122.4194 {
		t.Errorf("map coords = %v, %v", detail.MapLat, detail.MapLng)
	}
	if detail.MapAddress != "123 Market St" {
		t.Errorf("MapAddress = %q", detail.MapAddress)
	}
	if detail.PostedDate != "2025-08-01" {
		t.Errorf("PostedDate = %q", detail.PostedDate)
	}
}
