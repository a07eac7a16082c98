package catalog

const tomatoRefs = "refs/Tomato Leaf Disease/"

var defaultEntries = []Entry{
	{Name: "Apple Scab", Crop: "Apple", BasePath: "refs/apple/apple_scab"},
	{Name: "Black Rot", Crop: "Apple", BasePath: "refs/apple/black_rot"},
	{Name: "Cedar Apple Rust", Crop: "Apple", BasePath: "refs/apple/cedar_apple_rust"},
	{Name: "Apple Healthy", Crop: "Apple", BasePath: "refs/apple/healthy"},

	{Name: "Rice Bacterial Leaf Blight", Crop: "Rice", BasePath: "refs/rice/bacterial_leaf_blight"},
	{Name: "Rice Brown Spot", Crop: "Rice", BasePath: "refs/rice/brown_spot"},
	{Name: "Rice Healthy", Crop: "Rice", BasePath: "refs/rice/healthy"},
	{Name: "Rice Leaf Blast", Crop: "Rice", BasePath: "refs/rice/leaf_blast"},
	{Name: "Rice Leaf Scald", Crop: "Rice", BasePath: "refs/rice/leaf_scald"},
	{Name: "Rice Narrow Brown Spot", Crop: "Rice", BasePath: "refs/rice/narrow_brown_spot"},

	{Name: "Tomato Bacterial Spot", Crop: "Tomato", BasePath: tomatoRefs + "tomato-bacterial-spot"},
	{Name: "Tomato Early Blight", Crop: "Tomato", BasePath: tomatoRefs + "tomato-early-bright"},
	{Name: "Tomato Healthy", Crop: "Tomato", BasePath: tomatoRefs + "tomato-healthy"},
	{Name: "Tomato Late Blight", Crop: "Tomato", BasePath: tomatoRefs + "tomato-late-blight"},
	{Name: "Tomato Leaf Mould", Crop: "Tomato", BasePath: tomatoRefs + "tomato-leaf-mould"},
	{Name: "Tomato Septoria Leaf Spot", Crop: "Tomato", BasePath: tomatoRefs + "tomato-septoria_leaf_spot"},
	{Name: "Tomato Spider Mites", Crop: "Tomato", BasePath: tomatoRefs + "tomato-spider-mites-two-spotted-spider-mite"},
	{Name: "Tomato Target Spot", Crop: "Tomato", BasePath: tomatoRefs + "tomato-target-spot"},
	{Name: "Tomato Yellow Leaf Curl Virus", Crop: "Tomato", BasePath: tomatoRefs + "tomato-yellow-leaf-curl-virus"},
	{Name: "Tomato Mosaic Virus", Crop: "Tomato", BasePath: tomatoRefs + "tomato_mosaic_virus"},
}
