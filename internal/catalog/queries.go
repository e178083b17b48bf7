package catalog

const performerFields = `
	id
	name
	disambiguation
	alias_list
	gender
	birthdate
	ethnicity
	country
	eye_color
	hair_color
	height_cm
	measurements
	fake_tits
	career_length
	tattoos
	piercings
	url
	urls
	details
	stash_ids { endpoint stash_id }`

const allPerformersQuery = `
query AllPerformers {
	findPerformers(filter: { per_page: -1 }) {
		count
		performers {` + performerFields + `
		}
	}
}`

const stashBoxesQuery = `
query StashBoxes {
	configuration {
		general {
			stashBoxes { endpoint api_key name }
		}
	}
}`

const performerUpdateMutation = `
mutation PerformerUpdate($input: PerformerUpdateInput!) {
	performerUpdate(input: $input) { id }
}`

const performerDestroyMutation = `
mutation PerformerDestroy($input: PerformerDestroyInput!) {
	performerDestroy(input: $input)
}`

type kindQueries struct {
	find       string
	root       string
	listKey    string
	update     string
	updateName string
}

var queriesByKind = map[Kind]kindQueries{
	KindScene: {
		find: `
query FindScenes($filter: FindFilterType, $performer_filter: SceneFilterType) {
	findScenes(filter: $filter, scene_filter: $performer_filter) {
		count
		scenes { id performers { id } }
	}
}`,
		root:    "findScenes",
		listKey: "scenes",
		update: `
mutation SceneUpdate($input: SceneUpdateInput!) {
	sceneUpdate(input: $input) { id }
}`,
		updateName: "scene update",
	},
	KindGallery: {
		find: `
query FindGalleries($filter: FindFilterType, $performer_filter: GalleryFilterType) {
	findGalleries(filter: $filter, gallery_filter: $performer_filter) {
		count
		galleries { id performers { id } }
	}
}`,
		root:    "findGalleries",
		listKey: "galleries",
		update: `
mutation GalleryUpdate($input: GalleryUpdateInput!) {
	galleryUpdate(input: $input) { id }
}`,
		updateName: "gallery update",
	},
	KindImage: {
		find: `
query FindImages($filter: FindFilterType, $performer_filter: ImageFilterType) {
	findImages(filter: $filter, image_filter: $performer_filter) {
		count
		images { id performers { id } }
	}
}`,
		root:    "findImages",
		listKey: "images",
		update: `
mutation ImageUpdate($input: ImageUpdateInput!) {
	imageUpdate(input: $input) { id }
}`,
		updateName: "image update",
	},
}
