package bridge

// Page-realm snippets. Each one reads its parameters from the data
// attributes of its own script element, does a single privileged read, and
// dispatches exactly one completion event, wrapping any internal failure
// into the event's error field. The content realm cannot reach the player
// object or page globals directly, which is the whole reason these exist.

const TitleScript = `(() => {
  const el = document.currentScript;
  const videoId = el ? el.dataset.videoId : '';
  const playerId = (el && el.dataset.playerId) || 'movie_player';
  let detail = { subjectId: videoId, value: null };
  try {
    const player = document.getElementById(playerId);
    const resp = player && player.getPlayerResponse && player.getPlayerResponse();
    const details = resp && resp.videoDetails;
    if (details && details.videoId === videoId && details.title) {
      detail.value = details.title;
    }
  } catch (e) {
    detail.error = String(e && e.message || e);
  }
  window.dispatchEvent(new CustomEvent('ynt-title-data', { detail }));
})();`

const DescriptionScript = `(() => {
  const el = document.currentScript;
  const videoId = el ? el.dataset.videoId : '';
  const playerId = (el && el.dataset.playerId) || 'movie_player';
  let detail = { subjectId: videoId, value: null };
  try {
    const player = document.getElementById(playerId);
    const resp = player && player.getPlayerResponse && player.getPlayerResponse();
    const details = resp && resp.videoDetails;
    if (details && details.videoId === videoId && details.shortDescription) {
      detail.value = details.shortDescription;
    }
  } catch (e) {
    detail.error = String(e && e.message || e);
  }
  window.dispatchEvent(new CustomEvent('ynt-description-data', { detail }));
})();`

const ChannelScript = `(() => {
  const el = document.currentScript;
  const videoId = el ? el.dataset.videoId : '';
  const playerId = (el && el.dataset.playerId) || 'movie_player';
  let detail = { subjectId: videoId, value: null };
  try {
    const player = document.getElementById(playerId);
    const resp = player && player.getPlayerResponse && player.getPlayerResponse();
    const details = resp && resp.videoDetails;
    if (details && details.videoId === videoId && details.author) {
      detail.value = details.author;
    }
  } catch (e) {
    detail.error = String(e && e.message || e);
  }
  window.dispatchEvent(new CustomEvent('ynt-channel-data', { detail }));
})();`

const ChannelIDScript = `(() => {
  const el = document.currentScript;
  const handle = el ? el.dataset.channelHandle : '';
  let detail = { subjectId: handle, value: null };
  try {
    const data = window.ytInitialData;
    const header = data && data.metadata && data.metadata.channelMetadataRenderer;
    if (header && header.externalId) {
      detail.value = header.externalId;
    }
  } catch (e) {
    detail.error = String(e && e.message || e);
  }
  window.dispatchEvent(new CustomEvent('ynt-get-channel-id-inner-tube', { detail }));
})();`
